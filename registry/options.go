package registry

import (
	"cmp"
	"fmt"
	"regexp"
	"slices"
)

// Options select which parts of the registry are generated. The version and
// extension fields are regular expressions matched against the whole feature
// name; an empty expression matches nothing.
type Options struct {
	APIName          string
	Versions         string
	EmitVersions     string
	AddExtensions    string
	EmitExtensions   string
	RemoveExtensions string
}

type selector struct {
	versions         *regexp.Regexp
	emitVersions     *regexp.Regexp
	addExtensions    *regexp.Regexp
	emitExtensions   *regexp.Regexp
	removeExtensions *regexp.Regexp
}

func compilePattern(field, pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		pattern = "$^"
	}
	re, err := regexp.Compile("^(?:" + pattern + ")$")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	return re, nil
}

func (o Options) compile() (*selector, error) {
	var s selector
	var err error
	for _, p := range []struct {
		field   string
		pattern string
		re      **regexp.Regexp
	}{
		{"versions", o.Versions, &s.versions},
		{"emit_versions", o.EmitVersions, &s.emitVersions},
		{"add_extensions", o.AddExtensions, &s.addExtensions},
		{"emit_extensions", o.EmitExtensions, &s.emitExtensions},
		{"remove_extensions", o.RemoveExtensions, &s.removeExtensions},
	} {
		if *p.re, err = compilePattern(p.field, p.pattern); err != nil {
			return nil, err
		}
	}
	return &s, nil
}

// Validate reports whether the options compile.
func (o Options) Validate() error {
	_, err := o.compile()
	return err
}

// selectFeatures returns the features to walk: versions in document order
// followed by extensions ordered by extension number. The registry is not
// modified; the returned features are copies carrying the Emit flag.
func (r *Registry) selectFeatures(opts Options) ([]*Feature, error) {
	sel, err := opts.compile()
	if err != nil {
		return nil, err
	}

	var features []*Feature
	for _, f := range r.versions {
		if !listContains(f.api, opts.APIName) || !sel.versions.MatchString(f.Name) {
			continue
		}
		v := *f
		v.Emit = sel.emitVersions.MatchString(f.Name)
		features = append(features, &v)
	}

	var extensions []*Feature
	for _, f := range r.extensions {
		if f.api == "" || f.api == "disabled" || !listContains(f.api, opts.APIName) {
			continue
		}
		if !sel.addExtensions.MatchString(f.Name) || sel.removeExtensions.MatchString(f.Name) {
			continue
		}
		e := *f
		e.Emit = sel.emitExtensions.MatchString(f.Name)
		extensions = append(extensions, &e)
	}
	slices.SortStableFunc(extensions, func(a, b *Feature) int {
		return cmp.Compare(a.extNumber, b.extNumber)
	})

	return append(features, extensions...), nil
}
