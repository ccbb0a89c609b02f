package loader

import (
	"fmt"
	"math/big"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

// listBlocks are block types that may repeat and collect into a list.
// Every other block type appears at most once and becomes a table.
var listBlocks = map[string]bool{"files": true}

// parseHCL decodes native HCL syntax. Attributes become values, blocks
// become tables:
//
//	args = ["--port-from-env"]
//	env { LOG_LEVEL = "info" }
//	files {
//	  kind = "stdin"
//	}
//
// Expressions are evaluated without variables or functions.
func parseHCL(name string, data []byte) (map[string]any, error) {
	file, diags := hclparse.NewParser().ParseHCL(data, name)
	if diags.HasErrors() {
		return nil, hclError(name, diags)
	}
	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, parseError(name, 0, 0, fmt.Errorf("unexpected HCL body type %T", file.Body))
	}
	return hclBody(name, body)
}

func hclBody(name string, body *hclsyntax.Body) (map[string]any, error) {
	out := make(map[string]any, len(body.Attributes)+len(body.Blocks))

	for key, attr := range body.Attributes {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, hclError(name, diags)
		}
		v, err := ctyToGo(val)
		if err != nil {
			pos := attr.SrcRange.Start
			return nil, parseError(name, pos.Line, pos.Column, fmt.Errorf("%s: %w", key, err))
		}
		out[key] = v
	}

	for _, block := range body.Blocks {
		pos := block.TypeRange.Start
		if len(block.Labels) > 0 {
			return nil, parseError(name, pos.Line, pos.Column, fmt.Errorf("block %q takes no labels", block.Type))
		}
		if _, isAttr := body.Attributes[block.Type]; isAttr {
			return nil, parseError(name, pos.Line, pos.Column, fmt.Errorf("%q is both an attribute and a block", block.Type))
		}

		m, err := hclBody(name, block.Body)
		if err != nil {
			return nil, err
		}

		if listBlocks[block.Type] {
			list, _ := out[block.Type].([]any)
			out[block.Type] = append(list, m)
			continue
		}
		if _, dup := out[block.Type]; dup {
			return nil, parseError(name, pos.Line, pos.Column, fmt.Errorf("duplicate %q block", block.Type))
		}
		out[block.Type] = m
	}

	return out, nil
}

// ctyToGo converts a known cty value into string/int64/float64/bool/nil,
// []any and map[string]any. Integral numbers become int64; anything else
// is passed through as float64 so the schema reports it with a field path.
func ctyToGo(v cty.Value) (any, error) {
	if !v.IsKnown() {
		return nil, fmt.Errorf("value is not known")
	}
	if v.IsNull() {
		return nil, nil
	}

	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString(), nil
	case ty == cty.Number:
		bf := v.AsBigFloat()
		if bf.IsInt() {
			i, acc := bf.Int64()
			if acc != big.Exact {
				return nil, fmt.Errorf("integer out of range: %s", bf.String())
			}
			return i, nil
		}
		f, _ := bf.Float64()
		return f, nil
	case ty == cty.Bool:
		return v.True(), nil
	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		list := make([]any, 0, v.LengthInt())
		it := v.ElementIterator()
		for it.Next() {
			_, elem := it.Element()
			gv, err := ctyToGo(elem)
			if err != nil {
				return nil, err
			}
			list = append(list, gv)
		}
		return list, nil
	case ty.IsObjectType() || ty.IsMapType():
		m := make(map[string]any, v.LengthInt())
		it := v.ElementIterator()
		for it.Next() {
			k, elem := it.Element()
			gv, err := ctyToGo(elem)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k.AsString(), err)
			}
			m[k.AsString()] = gv
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unsupported HCL value type %s", ty.FriendlyName())
	}
}

// hclError keeps the position of the first error diagnostic.
func hclError(name string, diags hcl.Diagnostics) *LoadError {
	for _, d := range diags {
		if d.Severity != hcl.DiagError {
			continue
		}
		if d.Subject != nil {
			return parseError(name, d.Subject.Start.Line, d.Subject.Start.Column, d)
		}
		return parseError(name, 0, 0, d)
	}
	return parseError(name, 0, 0, diags)
}
