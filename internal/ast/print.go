package ast

import (
	"encoding/json"
	"fmt"
)

// Print produces a deterministic JSON representation of a single AST node.
// Positions are omitted so two otherwise-identical trees parsed from files
// at different line offsets print identically.
func Print(node Node) string {
	if node == nil {
		return "null"
	}
	data, err := json.MarshalIndent(simplify(node), "", "  ")
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return string(data)
}

// PrintDecls produces a deterministic JSON representation of a whole parsed
// file's top-level declarations. It backs the compiler driver's
// --debug-wave=ast output.
func PrintDecls(decls []Decl) string {
	data, err := json.MarshalIndent(simplifyDecls(decls), "", "  ")
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return string(data)
}

// Compact returns a compact single-line JSON representation of node.
func Compact(node Node) string {
	data, err := json.Marshal(simplify(node))
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return string(data)
}

func simplifyDecls(decls []Decl) []interface{} {
	out := make([]interface{}, len(decls))
	for i, d := range decls {
		out[i] = simplify(d)
	}
	return out
}

func simplifyStmts(stmts []Stmt) []interface{} {
	out := make([]interface{}, len(stmts))
	for i, s := range stmts {
		out[i] = simplify(s)
	}
	return out
}

func simplifyExprs(exprs []Expr) []interface{} {
	out := make([]interface{}, len(exprs))
	for i, e := range exprs {
		out[i] = simplify(e)
	}
	return out
}

func simplifyParams(params []Param) []interface{} {
	out := make([]interface{}, len(params))
	for i, p := range params {
		m := map[string]interface{}{"name": p.Name}
		if p.Type != nil {
			m["paramType"] = p.Type.String()
		}
		if p.Default != nil {
			m["default"] = simplify(p.Default)
		}
		out[i] = m
	}
	return out
}

// simplify converts an AST node into a JSON-serializable structure,
// dropping the Pos fields that would otherwise make output depend on
// exact source locations.
func simplify(node interface{}) interface{} {
	if node == nil {
		return nil
	}

	switch n := node.(type) {

	// ---- Declarations ---------------------------------------------------
	case *Function:
		m := map[string]interface{}{
			"type": "Function",
			"name": n.Name,
			"body": simplifyStmts(n.Body),
		}
		if len(n.Params) > 0 {
			m["params"] = simplifyParams(n.Params)
		}
		if n.ReturnType != nil {
			m["returnType"] = n.ReturnType.String()
		}
		return m

	case *ExternFunction:
		m := map[string]interface{}{
			"type":     "ExternFunction",
			"name":     n.Name,
			"abi":      n.ABI,
			"variadic": n.Variadic,
		}
		if n.Symbol != "" {
			m["symbol"] = n.Symbol
		}
		if len(n.Params) > 0 {
			m["params"] = simplifyParams(n.Params)
		}
		if n.ReturnType != nil {
			m["returnType"] = n.ReturnType.String()
		}
		return m

	case *Struct:
		fields := make([]interface{}, len(n.Fields))
		for i, f := range n.Fields {
			fields[i] = map[string]interface{}{"name": f.Name, "fieldType": f.Type.String()}
		}
		m := map[string]interface{}{"type": "Struct", "name": n.Name, "fields": fields}
		if len(n.Methods) > 0 {
			methods := make([]interface{}, len(n.Methods))
			for i, meth := range n.Methods {
				methods[i] = simplify(meth)
			}
			m["methods"] = methods
		}
		return m

	case *Enum:
		variants := make([]interface{}, len(n.Variants))
		for i, v := range n.Variants {
			vm := map[string]interface{}{"name": v.Name}
			if v.Explicit != nil {
				vm["explicit"] = simplify(v.Explicit)
			}
			variants[i] = vm
		}
		return map[string]interface{}{
			"type":     "Enum",
			"name":     n.Name,
			"reprType": n.ReprType.String(),
			"variants": variants,
		}

	case *TypeAlias:
		return map[string]interface{}{"type": "TypeAlias", "name": n.Name, "target": n.Target.String()}

	case *ProtoImpl:
		methods := make([]interface{}, len(n.Methods))
		for i, meth := range n.Methods {
			methods[i] = simplify(meth)
		}
		return map[string]interface{}{"type": "ProtoImpl", "target": n.Target, "methods": methods}

	case *Variable:
		// Variable doubles as a statement-position declaration and, with
		// only Name/Pos set, a bare expression reference; both shapes
		// marshal the same way here since the zero fields simply drop out.
		m := map[string]interface{}{"type": "Variable", "name": n.Name}
		if n.Type != nil {
			m["varType"] = n.Type.String()
		}
		if n.Init != nil {
			m["init"] = simplify(n.Init)
		}
		if n.Mutability != MutVar || n.Type != nil || n.Init != nil {
			m["mutability"] = mutabilityString(n.Mutability)
		}
		return m

	case *Import:
		return map[string]interface{}{"type": "Import", "path": n.Path}

	// ---- Statements -------------------------------------------------------
	case *If:
		m := map[string]interface{}{"type": "If", "cond": simplify(n.Cond), "body": simplifyStmts(n.Body)}
		if len(n.ElseIf) > 0 {
			clauses := make([]interface{}, len(n.ElseIf))
			for i, ei := range n.ElseIf {
				clauses[i] = map[string]interface{}{"cond": simplify(ei.Cond), "body": simplifyStmts(ei.Body)}
			}
			m["elseIf"] = clauses
		}
		if n.Else != nil {
			m["else"] = simplifyStmts(n.Else)
		}
		return m

	case *While:
		return map[string]interface{}{"type": "While", "cond": simplify(n.Cond), "body": simplifyStmts(n.Body)}

	case *For:
		m := map[string]interface{}{"type": "For", "body": simplifyStmts(n.Body)}
		if n.Init != nil {
			m["init"] = simplify(n.Init)
		}
		if n.Cond != nil {
			m["cond"] = simplify(n.Cond)
		}
		if n.Step != nil {
			m["step"] = simplify(n.Step)
		}
		return m

	case *Match:
		arms := make([]interface{}, len(n.Arms))
		for i, a := range n.Arms {
			am := map[string]interface{}{"body": simplifyStmts(a.Body)}
			if a.Pattern != nil {
				am["pattern"] = simplify(a.Pattern)
			}
			arms[i] = am
		}
		return map[string]interface{}{"type": "Match", "discriminant": simplify(n.Discriminant), "arms": arms}

	case *Return:
		m := map[string]interface{}{"type": "Return"}
		if n.Value != nil {
			m["value"] = simplify(n.Value)
		}
		return m

	case *Break:
		return map[string]interface{}{"type": "Break"}

	case *Continue:
		return map[string]interface{}{"type": "Continue"}

	case *Assign:
		return map[string]interface{}{"type": "Assign", "target": simplify(n.Target), "value": simplify(n.Value)}

	case *AssignOp:
		return map[string]interface{}{
			"type": "AssignOp", "op": compoundOpString(n.Op),
			"target": simplify(n.Target), "value": simplify(n.Value),
		}

	case *Print:
		return map[string]interface{}{"type": "Print", "text": n.Text, "newline": n.Newline}

	case *PrintFormat:
		m := map[string]interface{}{"type": "PrintFormat", "format": n.Format, "newline": n.Newline}
		if len(n.Args) > 0 {
			m["args"] = simplifyExprs(n.Args)
		}
		return m

	case *AsmBlock:
		return map[string]interface{}{
			"type":         "AsmBlock",
			"instructions": n.Instructions,
			"clobbers":     n.Clobbers,
		}

	case *ExprStmt:
		return map[string]interface{}{"type": "ExprStmt", "x": simplify(n.X)}

	// ---- Expressions --------------------------------------------------
	case *Literal:
		m := map[string]interface{}{"type": "Literal", "kind": litKindString(n.Kind)}
		if n.Text != "" {
			m["text"] = n.Text
		}
		if n.Value != nil {
			m["value"] = n.Value
		}
		return m

	case *Null:
		return map[string]interface{}{"type": "Null"}

	case *Deref:
		return map[string]interface{}{"type": "Deref", "x": simplify(n.X)}

	case *AddressOf:
		return map[string]interface{}{"type": "AddressOf", "x": simplify(n.X)}

	case *Unary:
		return map[string]interface{}{"type": "Unary", "op": unaryOpString(n.Op), "x": simplify(n.X)}

	case *Binary:
		return map[string]interface{}{
			"type": "Binary", "op": binOpString(n.Op),
			"left": simplify(n.Left), "right": simplify(n.Right),
		}

	case *Index:
		return map[string]interface{}{"type": "Index", "target": simplify(n.Target), "index": simplify(n.Index)}

	case *FieldAccess:
		return map[string]interface{}{"type": "FieldAccess", "object": simplify(n.Object), "field": n.Field}

	case *ArrayLiteral:
		return map[string]interface{}{"type": "ArrayLiteral", "elements": simplifyExprs(n.Elements)}

	case *StructLiteral:
		fields := make([]interface{}, len(n.Fields))
		for i, f := range n.Fields {
			fields[i] = map[string]interface{}{"name": f.Name, "value": simplify(f.Value)}
		}
		return map[string]interface{}{"type": "StructLiteral", "name": n.Name, "fields": fields}

	case *Grouped:
		return map[string]interface{}{"type": "Grouped", "x": simplify(n.X)}

	case *Assignment:
		return map[string]interface{}{"type": "Assignment", "target": simplify(n.Target), "value": simplify(n.Value)}

	case *AssignOperation:
		return map[string]interface{}{
			"type": "AssignOperation", "op": compoundOpString(n.Op),
			"target": simplify(n.Target), "value": simplify(n.Value),
		}

	case *MethodCall:
		m := map[string]interface{}{"type": "MethodCall", "object": simplify(n.Object), "name": n.Name}
		if len(n.Args) > 0 {
			m["args"] = simplifyExprs(n.Args)
		}
		return m

	case *FunctionCall:
		m := map[string]interface{}{"type": "FunctionCall", "name": n.Name}
		if len(n.Args) > 0 {
			m["args"] = simplifyExprs(n.Args)
		}
		return m

	case *Cast:
		return map[string]interface{}{"type": "Cast", "x": simplify(n.X), "targetType": n.TargetType.String()}

	default:
		return map[string]interface{}{"type": fmt.Sprintf("%T", node), "_note": "not yet handled by printer"}
	}
}

func litKindString(k LitKind) string {
	switch k {
	case LitInt:
		return "Int"
	case LitFloat:
		return "Float"
	case LitString:
		return "String"
	case LitChar:
		return "Char"
	case LitByte:
		return "Byte"
	case LitBool:
		return "Bool"
	default:
		return "Unknown"
	}
}

func mutabilityString(m Mutability) string {
	switch m {
	case MutVar:
		return "var"
	case MutLet:
		return "let"
	case MutLetMut:
		return "let mut"
	case MutConst:
		return "const"
	case MutStatic:
		return "static"
	default:
		return "unknown"
	}
}

func unaryOpString(op UnaryOp) string {
	switch op {
	case UnaryNeg:
		return "-"
	case UnaryNot:
		return "!"
	case UnaryBitNot:
		return "~"
	default:
		return "?"
	}
}

func binOpString(op BinOp) string {
	switch op {
	case BinAdd:
		return "+"
	case BinSub:
		return "-"
	case BinMul:
		return "*"
	case BinDiv:
		return "/"
	case BinMod:
		return "%"
	case BinBitAnd:
		return "&"
	case BinBitOr:
		return "|"
	case BinBitXor:
		return "^"
	case BinShl:
		return "<<"
	case BinShr:
		return ">>"
	case BinLt:
		return "<"
	case BinGt:
		return ">"
	case BinLte:
		return "<="
	case BinGte:
		return ">="
	case BinEq:
		return "=="
	case BinNeq:
		return "!="
	case BinAnd:
		return "&&"
	case BinOr:
		return "||"
	default:
		return "?"
	}
}

func compoundOpString(op CompoundOp) string {
	switch op {
	case OpAddAssign:
		return "+="
	case OpSubAssign:
		return "-="
	case OpMulAssign:
		return "*="
	case OpDivAssign:
		return "/="
	case OpModAssign:
		return "%="
	default:
		return "?="
	}
}
