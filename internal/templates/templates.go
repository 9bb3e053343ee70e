// Package templates resolves profile templates into installable AWS CLI
// profiles and persists the template collection as a JSON document.
//
// A template holds scalar settings and may extend one other template. When a
// template is resolved its own settings win over those of its ancestors, so
// the nearest template that sets a key decides its value.
package templates

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"sort"
	"strconv"

	"github.com/jmreicha/aws-login/internal/core"
)

// Template is an unprocessed profile template as stored in the templates file.
type Template struct {
	// Enabled controls whether the template is offered as a profile. Disabled
	// templates can still be extended.
	Enabled bool

	// Extends names the parent template, if any.
	Extends string

	// Settings maps AWS CLI configuration keys to JSON scalar values.
	Settings map[string]any
}

var errNullTemplate = errors.New("a profile template must be a JSON object, not null")

type templateJSON struct {
	Enabled  *bool          `json:"enabled"`
	Extends  *string        `json:"extends"`
	Settings map[string]any `json:"settings"`
}

// UnmarshalJSON decodes a template, defaulting enabled to true and keeping
// numbers in their original decimal form.
func (t *Template) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return errNullTemplate
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var raw templateJSON
	if err := decoder.Decode(&raw); err != nil {
		return err
	}

	*t = Template{Enabled: true, Settings: raw.Settings}
	if raw.Enabled != nil {
		t.Enabled = *raw.Enabled
	}
	if raw.Extends != nil {
		t.Extends = *raw.Extends
	}

	return nil
}

// MarshalJSON encodes a template. An empty Extends is written as null.
func (t Template) MarshalJSON() ([]byte, error) {
	enabled := t.Enabled
	raw := templateJSON{Enabled: &enabled, Settings: t.Settings}
	if t.Extends != "" {
		extends := t.Extends
		raw.Extends = &extends
	}

	return json.Marshal(raw)
}

// Templates is a named collection of profile templates.
type Templates map[string]Template

// Profile is a resolved template, ready to be installed into the AWS CLI.
type Profile struct {
	Name     string
	Settings map[string]string
}

// Keys returns the setting keys in sorted order.
func (p Profile) Keys() []string {
	return sortedKeys(p.Settings)
}

// Profiles is a named collection of resolved profiles.
type Profiles map[string]Profile

// Names returns the profile names in sorted order.
func (p Profiles) Names() []string {
	return sortedKeys(p)
}

// Parse decodes a JSON templates document. The document must hold exactly
// one JSON value.
func Parse(r io.Reader) (Templates, error) {
	decoder := json.NewDecoder(r)

	var templates Templates
	if err := decoder.Decode(&templates); err != nil {
		return nil, core.Errorf(1, "%s", err)
	}

	var trailing json.RawMessage
	if err := decoder.Decode(&trailing); !errors.Is(err, io.EOF) {
		if err != nil {
			return nil, core.Errorf(1, "%s", err)
		}
		return nil, core.Errorf(1, "The templates document has content after its top-level value.")
	}

	if templates == nil {
		templates = Templates{}
	}

	return templates, nil
}

// Names returns the template names in sorted order.
func (t Templates) Names() []string {
	return sortedKeys(t)
}

// Merge returns a new collection holding every template of t and remote.
// Templates in remote replace those of t with the same name.
func (t Templates) Merge(remote Templates) Templates {
	merged := make(Templates, len(t)+len(remote))
	for name, template := range t {
		merged[name] = template
	}
	for name, template := range remote {
		merged[name] = template
	}

	return merged
}

// Resolve merges the settings of the named template with those of its
// ancestors. A key set by a template is never overwritten by an ancestor.
func (t Templates) Resolve(name string) (Profile, error) {
	template, ok := t[name]
	if !ok {
		return Profile{}, core.Errorf(1, "The profile template, %s, does not exist.", name)
	}

	profile := Profile{Name: name, Settings: make(map[string]string)}
	visited := map[string]bool{name: true}
	current, currentName := template, name

	for {
		if err := mergeSettings(profile.Settings, current.Settings); err != nil {
			return Profile{}, core.WithContextf(err, "Could not process the profile template, %s.", currentName)
		}

		parentName := current.Extends
		if parentName == "" {
			return profile, nil
		}

		if visited[parentName] {
			return Profile{}, core.Errorf(1,
				"The profile template, %s, has a cycle in its inheritance chain at %s.", name, parentName)
		}
		visited[parentName] = true

		parent, ok := t[parentName]
		if !ok {
			return Profile{}, core.Errorf(1,
				"The profile template, %s, extends %s, which does not exist.", name, parentName)
		}

		current, currentName = parent, parentName
	}
}

// Profiles resolves every enabled template. Templates are resolved in name
// order so the first failure is reported consistently.
func (t Templates) Profiles() (Profiles, error) {
	profiles := make(Profiles)

	for _, name := range t.Names() {
		if !t[name].Enabled {
			continue
		}

		profile, err := t.Resolve(name)
		if err != nil {
			return nil, err
		}

		profiles[name] = profile
	}

	return profiles, nil
}

func mergeSettings(dst map[string]string, settings map[string]any) error {
	for _, key := range sortedKeys(settings) {
		if _, ok := dst[key]; ok {
			continue
		}

		value, err := scalarString(settings[key])
		if err != nil {
			return core.WithContextf(err, "Could not convert the value of the setting, %s.", key)
		}

		dst[key] = value
	}

	return nil
}

func scalarString(value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case bool:
		return strconv.FormatBool(v), nil
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	default:
		return "", core.Errorf(1, "The JSON encoded values of array or object type are not supported.")
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	return keys
}
