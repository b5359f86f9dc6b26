package nodes

import (
	"context"
	"fmt"

	"github.com/avi3tal/blueprint/internal/schema"
	"github.com/pkg/errors"
)

// Built-in type ids
const (
	TypeOnStart        = "ON_START"
	TypeVariableGetter = "variableGetter"
	TypeVariableSetter = "variableSetter"
	TypeForEach        = "forEach"
	TypeAdd            = "ADD"
	TypeConsoleLog     = "CONSOLE_LOG"
	TypeBranch         = "BRANCH"
	TypeDelay          = "DELAY"
	TypeFormat         = "FORMAT"
)

// ParamVariable names the variable a getter or setter is bound to
const ParamVariable = "variable"

const def = schema.DefaultExecPort

// RegisterBuiltins installs every built-in kind into reg
func RegisterBuiltins(reg *schema.Registry) error {
	for _, s := range Builtins() {
		if err := reg.Register(s); err != nil {
			return errors.Wrapf(err, "failed to register %s", s.TypeID)
		}
	}
	return nil
}

// Builtins returns the schemas of the built-in kinds
func Builtins() []schema.NodeTypeSchema {
	return []schema.NodeTypeSchema{
		OnStart(),
		VariableGetter(),
		VariableSetter(),
		ForEach(),
		Add(),
		ConsoleLog(),
		Branch(),
		Delay(),
		Format(),
	}
}

func OnStart() schema.NodeTypeSchema {
	return schema.NodeTypeSchema{
		TypeID:      TypeOnStart,
		Label:       "Start",
		ExecOutputs: []string{def},
		Behavior: schema.BehaviorFunc(func(context.Context, *schema.Invocation) (schema.Values, error) {
			return schema.Values{}, nil
		}),
	}
}

// VariableGetter reads the global named by the node's "variable" param.
func VariableGetter() schema.NodeTypeSchema {
	return schema.NodeTypeSchema{
		TypeID:       TypeVariableGetter,
		Label:        "Get Variable",
		ValueOutputs: []schema.PortSpec{{Name: "value", Type: schema.TypeAny}},
		Behavior: schema.BehaviorFunc(func(_ context.Context, inv *schema.Invocation) (schema.Values, error) {
			name, err := variableName(inv)
			if err != nil {
				return nil, err
			}
			value, _ := inv.Globals.Get(name)
			return schema.Values{"value": value}, nil
		}),
	}
}

// VariableSetter writes its input to the global named by the node's
// "variable" param and echoes it. A missing input writes 0.
func VariableSetter() schema.NodeTypeSchema {
	return schema.NodeTypeSchema{
		TypeID:       TypeVariableSetter,
		Label:        "Set Variable",
		ValueInputs:  []schema.PortSpec{{Name: "value", Type: schema.TypeAny}},
		ValueOutputs: []schema.PortSpec{{Name: "value", Type: schema.TypeAny}},
		ExecInputs:   []string{def},
		ExecOutputs:  []string{def},
		Behavior: schema.BehaviorFunc(func(_ context.Context, inv *schema.Invocation) (schema.Values, error) {
			name, err := variableName(inv)
			if err != nil {
				return nil, err
			}
			value, ok := inv.Input("value")
			if !ok {
				value = 0
			}
			inv.Globals.Set(name, value)
			return schema.Values{"value": value}, nil
		}),
	}
}

// ForEach runs once per element of its array input. The engine supplies
// index and currentItem as extra inputs on every call.
func ForEach() schema.NodeTypeSchema {
	return schema.NodeTypeSchema{
		TypeID:      TypeForEach,
		Label:       "ForEach",
		ValueInputs: []schema.PortSpec{{Name: "array", Type: schema.TypeArray}},
		ValueOutputs: []schema.PortSpec{
			{Name: "index", Type: schema.TypeNumber},
			{Name: "currentItem", Type: schema.TypeAny},
		},
		ExecInputs:  []string{def},
		ExecOutputs: []string{"iteration", "complete"},
		Loop: &schema.LoopSpec{
			ArrayInput:      "array",
			IndexOutput:     "index",
			ItemOutput:      "currentItem",
			IterationOutput: "iteration",
			CompleteOutput:  "complete",
		},
		Behavior: schema.BehaviorFunc(func(_ context.Context, inv *schema.Invocation) (schema.Values, error) {
			return schema.Values{
				"index":       inv.Inputs["index"],
				"currentItem": inv.Inputs["currentItem"],
			}, nil
		}),
	}
}

// Add sums a and b, treating missing operands as 0.
func Add() schema.NodeTypeSchema {
	return schema.NodeTypeSchema{
		TypeID: TypeAdd,
		Label:  "Add",
		ValueInputs: []schema.PortSpec{
			{Name: "a", Type: schema.TypeNumber},
			{Name: "b", Type: schema.TypeNumber},
		},
		ValueOutputs: []schema.PortSpec{{Name: "result", Type: schema.TypeNumber}},
		ExecInputs:   []string{def},
		ExecOutputs:  []string{def},
		Behavior: schema.BehaviorFunc(func(_ context.Context, inv *schema.Invocation) (schema.Values, error) {
			result, err := addNumbers(inv.Inputs["a"], inv.Inputs["b"])
			if err != nil {
				return nil, err
			}
			return schema.Values{"result": result}, nil
		}),
	}
}

func ConsoleLog() schema.NodeTypeSchema {
	return schema.NodeTypeSchema{
		TypeID:      TypeConsoleLog,
		Label:       "Console Log",
		ValueInputs: []schema.PortSpec{{Name: "value", Type: schema.TypeAny}},
		ExecInputs:  []string{def},
		ExecOutputs: []string{def},
		Behavior: schema.BehaviorFunc(func(_ context.Context, inv *schema.Invocation) (schema.Values, error) {
			inv.Print(inv.Inputs["value"])
			return schema.Values{}, nil
		}),
	}
}

func variableName(inv *schema.Invocation) (string, error) {
	name := inv.Param(ParamVariable)
	if name == "" {
		return "", fmt.Errorf("node %s: %q param is required", inv.NodeID, ParamVariable)
	}
	if inv.Globals == nil {
		return "", fmt.Errorf("node %s: no variable store", inv.NodeID)
	}
	return name, nil
}
