package codegen

import (
	"strings"
)

// DefaultCopyright is the holder line used when the configuration does not
// set one.
const DefaultCopyright = "Copyright (c) 2022, Arm Limited and Contributors"

const licenseBody = ` *
 * SPDX-License-Identifier: Apache-2.0
 *
 * Licensed under the Apache License, Version 2.0 the "License";
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */
`

// FileHeader returns the license banner and generated-file warning that
// start every generated header.
func FileHeader(copyright string) string {
	if copyright == "" {
		copyright = DefaultCopyright
	}

	var b strings.Builder
	b.WriteString("/* ")
	b.WriteString(copyright)
	b.WriteString("\n")
	b.WriteString(licenseBody)
	b.WriteString("\n#pragma once\n\n// DO NOT EDIT, THIS IS A GENERATED FILE!\n\n")
	return b.String()
}
