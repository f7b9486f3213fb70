package fieldrules

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"os"
	"sync"

	"github.com/JonMunkholm/userdash/internal/columns"
	"github.com/pkg/errors"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var schemaJSON []byte

const schemaURL = "fieldrules.schema.json"

var compileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read field rules schema")
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, doc); err != nil {
		return nil, errors.Wrap(err, "failed to add field rules schema")
	}
	return c.Compile(schemaURL)
})

// Load reads the rules file at path and returns its customizations.
func Load(path string, reg *Registry) ([]columns.Customization, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read field rules from %s", path)
	}

	customs, err := Parse(data, reg)
	if err != nil {
		return nil, errors.Wrapf(err, "field rules %s", path)
	}
	return customs, nil
}

// Parse decodes, schema checks and converts a rules document.
// An empty document yields no customizations.
func Parse(data []byte, reg *Registry) ([]columns.Customization, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "failed to parse field rules")
	}
	if doc == nil {
		return nil, nil
	}

	if err := validate(doc); err != nil {
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(err, "failed to decode field rules")
	}
	return f.Customizations(reg)
}

// validate checks doc against the embedded JSON schema. The document goes
// through JSON so numbers and maps have the types the validator expects.
func validate(doc any) error {
	sch, err := compileSchema()
	if err != nil {
		return err
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "field rules are not representable as JSON")
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return errors.Wrap(err, "failed to re-read field rules")
	}

	if err := sch.Validate(inst); err != nil {
		return errors.Wrap(err, "field rules do not match schema")
	}
	return nil
}
