package constprop

import "vela/internal/ir"

// rewrite replaces every Value source of every command with a freshly
// constructed literal when the per-command snapshot records that source's
// variable as Constant.
func rewrite(fn *ir.Function, results map[cmdRef]cmdConstants) {
	for i := 1; i < len(fn.Blocks); i++ {
		blockID := ir.BlockID(i)
		for cmdIdx, cmd := range fn.Block(blockID).Cmds {
			consts, ok := results[cmdRef{block: blockID, cmd: cmdIdx}]
			if !ok {
				continue
			}
			srcs := cmd.Sources()
			changed := false
			for i, s := range srcs {
				lvar, ok := s.(ir.LocalVar)
				if !ok {
					continue
				}
				val, ok := consts[lvar.ID]
				if !ok {
					continue
				}
				srcs[i] = ir.AsLiteral(fn.Var(lvar.ID).Typ, literalGoValue(val))
				changed = true
			}
			if changed {
				cmd.SetSources(srcs)
			}
		}
	}
}

// literalGoValue extracts the underlying Go value a literal Value carries,
// for re-wrapping via ir.AsLiteral at the destination variable's type.
func literalGoValue(v ir.Value) interface{} {
	switch lit := v.(type) {
	case ir.Nil:
		return nil
	case ir.Bool:
		return lit.V
	case ir.Integer:
		return lit.V
	case ir.Float:
		return lit.V
	case ir.String:
		return lit.V
	default:
		return nil
	}
}
