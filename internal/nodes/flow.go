package nodes

import (
	"context"
	"fmt"
	"time"

	"github.com/avi3tal/blueprint/internal/schema"
	"github.com/tmc/langchaingo/prompts"
)

// ParamTemplate is the template a FORMAT node renders
const ParamTemplate = "template"

// Branch triggers "true" or "false" depending on its condition input.
func Branch() schema.NodeTypeSchema {
	return schema.NodeTypeSchema{
		TypeID:      TypeBranch,
		Label:       "Branch",
		ValueInputs: []schema.PortSpec{{Name: "condition", Type: schema.TypeBoolean}},
		ExecInputs:  []string{def},
		ExecOutputs: []string{"true", "false"},
		Behavior: schema.BehaviorFunc(func(ctx context.Context, inv *schema.Invocation) (schema.Values, error) {
			port := "false"
			if truthy(inv.Inputs["condition"]) {
				port = "true"
			}
			if err := inv.Trigger(ctx, port); err != nil {
				return nil, err
			}
			return schema.Values{}, nil
		}),
	}
}

// Delay waits for its ms input (or "ms" param) before continuing the flow.
// The wait ends early when the pass is cancelled.
func Delay() schema.NodeTypeSchema {
	return schema.NodeTypeSchema{
		TypeID:      TypeDelay,
		Label:       "Delay",
		ValueInputs: []schema.PortSpec{{Name: "ms", Type: schema.TypeNumber}},
		ExecInputs:  []string{def},
		ExecOutputs: []string{def},
		Behavior: schema.BehaviorFunc(func(ctx context.Context, inv *schema.Invocation) (schema.Values, error) {
			raw, ok := inv.Input("ms")
			if !ok {
				raw = inv.Params["ms"]
			}
			ms, err := toFloat(raw)
			if err != nil {
				return nil, fmt.Errorf("delay: %w", err)
			}

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(ms * float64(time.Millisecond))):
			}
			return schema.Values{}, nil
		}),
	}
}

// Format renders its "template" param as a Go template. The data is the
// "values" object input plus the "value" input under the key "value".
func Format() schema.NodeTypeSchema {
	return schema.NodeTypeSchema{
		TypeID: TypeFormat,
		Label:  "Format",
		ValueInputs: []schema.PortSpec{
			{Name: "value", Type: schema.TypeAny},
			{Name: "values", Type: schema.TypeObject},
		},
		ValueOutputs: []schema.PortSpec{{Name: "text", Type: schema.TypeString}},
		Behavior: schema.BehaviorFunc(func(_ context.Context, inv *schema.Invocation) (schema.Values, error) {
			data := map[string]any{}
			if obj, ok := inv.Inputs["values"].(map[string]any); ok {
				for k, v := range obj {
					data[k] = v
				}
			}
			data["value"] = inv.Inputs["value"]

			text, err := prompts.RenderTemplate(inv.Param(ParamTemplate), prompts.TemplateFormatGoTemplate, data)
			if err != nil {
				return nil, fmt.Errorf("format: %w", err)
			}
			return schema.Values{"text": text}, nil
		}),
	}
}
