package assembler

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/frc-5160-the-chargers/gocommand/internal/ctxlog"
	"github.com/frc-5160-the-chargers/gocommand/internal/model"
)

// applyInputDefaults fills manifest default values into input struct fields
// the user did not set in the arguments body.
func applyInputDefaults(ctx context.Context, inputStruct any, inputs map[string]*model.InputDefinition, userBody hcl.Body) error {
	logger := ctxlog.FromContext(ctx)
	if inputStruct == nil || len(inputs) == 0 {
		return nil
	}

	userProvided := make(map[string]struct{})
	if userBody != nil {
		attrs, _ := userBody.JustAttributes()
		for name := range attrs {
			userProvided[name] = struct{}{}
		}
	}

	structVal := reflect.ValueOf(inputStruct).Elem()
	structType := structVal.Type()

	for name, inputDef := range inputs {
		if _, ok := userProvided[name]; ok || inputDef.Default == nil {
			continue
		}
		for i := 0; i < structType.NumField(); i++ {
			field := structType.Field(i)
			tagName := strings.Split(field.Tag.Get("hcl"), ",")[0]
			if tagName != name {
				continue
			}
			fieldVal := structVal.Field(i)
			if fieldVal.CanSet() {
				logger.Debug("Applying default value.", "field", tagName, "value", *inputDef.Default)
				if err := gocty.FromCtyValue(*inputDef.Default, fieldVal.Addr().Interface()); err != nil {
					return fmt.Errorf("applying default for '%s': %w", name, err)
				}
			}
			break
		}
	}
	return nil
}
