package hclloader

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// typeFromExpression converts an HCL expression holding a type keyword
// (`string`, `number`, `bool`, `any`) into its cty.Type. Collection and
// object type constructors are rejected with a diagnostic: manifest inputs
// stay primitive so the parity check against Go handler structs remains
// exact.
func typeFromExpression(expr hcl.Expression) (cty.Type, hcl.Diagnostics) {
	var diags hcl.Diagnostics

	traversal, hclDiags := hcl.AbsTraversalForExpr(expr)
	if hclDiags.HasErrors() || len(traversal) != 1 {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Invalid type specification",
			Detail:   "The 'type' attribute must be a bare type keyword: string, number, bool, or any.",
			Subject:  expr.Range().Ptr(),
		})
		return cty.NilType, diags
	}

	switch name := traversal.RootName(); name {
	case "string":
		return cty.String, diags
	case "number":
		return cty.Number, diags
	case "bool":
		return cty.Bool, diags
	case "any":
		return cty.DynamicPseudoType, diags
	case "list", "map", "set", "object", "tuple":
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Unsupported collection type",
			Detail:   fmt.Sprintf("Manifest inputs must be primitive; '%s' is not supported.", name),
			Subject:  expr.Range().Ptr(),
		})
		return cty.NilType, diags
	default:
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Unsupported type",
			Detail:   fmt.Sprintf("The keyword '%s' is not a valid type. Supported types: string, number, bool, any.", name),
			Subject:  expr.Range().Ptr(),
		})
		return cty.NilType, diags
	}
}
