package settings

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

// FileName is the name of the persisted settings file inside the config dir.
const FileName = "tempest.hcl"

// settingsFile is the on-disk shape. Pointers tell "absent" apart from a zero value.
type settingsFile struct {
	Enabled   *bool    `hcl:"enabled,optional"`
	Templates []string `hcl:"templates,optional"`
}

// Decode parses the HCL settings file on top of base.
func Decode(data []byte, filename string, base Settings) (Settings, error) {
	out := base.Clone()

	parser := hclparse.NewParser()
	f, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return out, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	var raw settingsFile
	diags = gohcl.DecodeBody(f.Body, &hcl.EvalContext{}, &raw)
	if diags.HasErrors() {
		return out, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	if raw.Enabled != nil {
		out.Enabled = *raw.Enabled
	}
	if raw.Templates != nil {
		out.Templates = raw.Templates
	}

	return out, nil
}

// Encode renders s as an HCL settings file.
func Encode(s Settings) []byte {
	f := hclwrite.NewEmptyFile()
	body := f.Body()

	body.SetAttributeValue("enabled", cty.BoolVal(s.Enabled))

	if len(s.Templates) == 0 {
		body.SetAttributeValue("templates", cty.ListValEmpty(cty.String))
	} else {
		vals := make([]cty.Value, 0, len(s.Templates))
		for _, t := range s.Templates {
			vals = append(vals, cty.StringVal(t))
		}
		body.SetAttributeValue("templates", cty.ListVal(vals))
	}

	return f.Bytes()
}
