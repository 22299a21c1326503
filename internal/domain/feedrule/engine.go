package feedrule

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/channelsync/backend/internal/domain/catalog"
)

var (
	ErrInvalidNumericValue = errors.New("feedrule: condition value is not numeric")
	ErrInvalidOperation    = errors.New("feedrule: invalid numeric operation")
	ErrDivideByZero        = errors.New("feedrule: division by zero")
	ErrInvalidPattern      = errors.New("feedrule: invalid replace pattern")
)

// FieldChange is a before/after diff for one product field
type FieldChange struct {
	Field  string `json:"field"`
	Before string `json:"before"`
	After  string `json:"after"`
}

// Matches reports whether a product satisfies the rule. A rule with zero
// conditions matches every product (explicit "always apply").
func Matches(rule *FeedRule, product *catalog.Product) bool {
	if len(rule.Conditions) == 0 {
		return true
	}

	for _, cond := range rule.Conditions {
		matched := EvaluateCondition(cond, product)
		if rule.MatchType == MatchAny && matched {
			return true
		}
		if rule.MatchType != MatchAny && !matched {
			return false
		}
	}
	return rule.MatchType != MatchAny
}

// EvaluateCondition evaluates one condition against a product. Unknown
// fields and unknown operators evaluate to false.
func EvaluateCondition(cond Condition, product *catalog.Product) bool {
	value, ok := product.FieldValue(cond.Field)
	if !ok {
		return false
	}

	switch cond.Operator {
	case OperatorEquals:
		return strings.EqualFold(stringify(value), stringify(cond.Value))
	case OperatorNotEquals:
		return !strings.EqualFold(stringify(value), stringify(cond.Value))
	case OperatorContains:
		return containsFold(stringify(value), stringify(cond.Value))
	case OperatorNotContains:
		return !containsFold(stringify(value), stringify(cond.Value))
	case OperatorStartsWith:
		return strings.HasPrefix(lower(value), lower(cond.Value))
	case OperatorEndsWith:
		return strings.HasSuffix(lower(value), lower(cond.Value))
	case OperatorGreaterThan, OperatorLessThan, OperatorGreaterOrEqual, OperatorLessOrEqual:
		left, err := toDecimal(value)
		if err != nil {
			return false
		}
		right, err := toDecimal(cond.Value)
		if err != nil {
			return false
		}
		switch cond.Operator {
		case OperatorGreaterThan:
			return left.GreaterThan(right)
		case OperatorLessThan:
			return left.LessThan(right)
		case OperatorGreaterOrEqual:
			return left.GreaterThanOrEqual(right)
		default:
			return left.LessThanOrEqual(right)
		}
	case OperatorIsEmpty:
		return isEmpty(value)
	case OperatorIsNotEmpty:
		return !isEmpty(value)
	default:
		// Unknown operator: fail safe
		return false
	}
}

// Apply runs the rule's actions in declared order against the product
// (callers pass a working copy) and returns the coalesced per-field diffs.
// A matched product with zero resulting diffs counts as unmodified.
func Apply(rule *FeedRule, product *catalog.Product) ([]FieldChange, error) {
	before := make(map[string]string)
	touched := make([]string, 0, len(rule.Actions))

	for _, action := range rule.Actions {
		field := actionField(action)
		if _, seen := before[field]; !seen {
			before[field] = fieldString(product, field)
			touched = append(touched, field)
		}
		if err := applyAction(action, product); err != nil {
			return nil, err
		}
	}

	changes := make([]FieldChange, 0, len(touched))
	for _, field := range touched {
		after := fieldString(product, field)
		if after == before[field] {
			continue
		}
		changes = append(changes, FieldChange{Field: field, Before: before[field], After: after})
	}
	return changes, nil
}

// actionField resolves the field an action touches
func actionField(action Action) string {
	switch action.Type {
	case ActionSetCategory:
		return catalog.FieldCategory
	case ActionAddTag, ActionRemoveTag:
		return catalog.FieldTags
	default:
		return strings.ToLower(action.Field)
	}
}

// applyAction applies one action to the product
func applyAction(action Action, product *catalog.Product) error {
	switch action.Type {
	case ActionSetField:
		if isNumericField(action.Field) {
			value, err := toDecimal(action.Value)
			if err != nil {
				return err
			}
			return product.SetNumericField(action.Field, value)
		}
		return product.SetStringField(action.Field, stringify(action.Value))

	case ActionAppendText:
		current, ok := product.FieldValue(action.Field)
		if !ok {
			return catalog.ErrUnknownField
		}
		return product.SetStringField(action.Field, stringify(current)+stringify(action.Value))

	case ActionPrependText:
		current, ok := product.FieldValue(action.Field)
		if !ok {
			return catalog.ErrUnknownField
		}
		return product.SetStringField(action.Field, stringify(action.Value)+stringify(current))

	case ActionReplaceText:
		pattern, err := regexp.Compile(stringify(action.Value))
		if err != nil {
			return ErrInvalidPattern
		}
		current, ok := product.FieldValue(action.Field)
		if !ok {
			return catalog.ErrUnknownField
		}
		replaced := pattern.ReplaceAllString(stringify(current), action.Replacement)
		return product.SetStringField(action.Field, replaced)

	case ActionModifyField:
		return modifyNumericField(action, product)

	case ActionSetCategory:
		product.Category = stringify(action.Value)
		return nil

	case ActionAddTag:
		product.AddTag(stringify(action.Value))
		return nil

	case ActionRemoveTag:
		product.RemoveTag(stringify(action.Value))
		return nil

	default:
		return ErrInvalidActionType
	}
}

// modifyNumericField applies an arithmetic operation to a numeric field
func modifyNumericField(action Action, product *catalog.Product) error {
	current, err := product.NumericField(action.Field)
	if err != nil {
		return err
	}
	operand, err := toDecimal(action.Value)
	if err != nil {
		return err
	}

	var result decimal.Decimal
	switch NumericOperation(strings.ToLower(action.Operation)) {
	case OperationAdd:
		result = current.Add(operand)
	case OperationSubtract:
		result = current.Sub(operand)
	case OperationMultiply:
		result = current.Mul(operand)
	case OperationDivide:
		if operand.IsZero() {
			return ErrDivideByZero
		}
		result = current.Div(operand).Round(4)
	case OperationRound:
		places := int32(operand.IntPart())
		result = current.Round(places)
	default:
		return ErrInvalidOperation
	}

	return product.SetNumericField(action.Field, result)
}

// ---------------------------------------------------------------------------
// Value helpers
// ---------------------------------------------------------------------------

func isNumericField(field string) bool {
	switch strings.ToLower(field) {
	case catalog.FieldPrice, catalog.FieldCompareAtPrice, catalog.FieldStock:
		return true
	default:
		return false
	}
}

// fieldString renders a field value for diffing and preview display
func fieldString(product *catalog.Product, field string) string {
	value, ok := product.FieldValue(field)
	if !ok {
		return ""
	}
	return stringify(value)
}

// stringify renders any condition/action value as a comparable string
func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case decimal.Decimal:
		return v.String()
	case []string:
		return strings.Join(v, ",")
	case float64:
		// JSON numbers decode as float64; render without a trailing .0 for
		// whole numbers
		return decimal.NewFromFloat(v).String()
	case int:
		return decimal.NewFromInt(int64(v)).String()
	case int64:
		return decimal.NewFromInt(v).String()
	case bool:
		if v {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", v)
	}
}

func lower(value any) string {
	return strings.ToLower(stringify(value))
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// toDecimal converts condition/action values to decimals
func toDecimal(value any) (decimal.Decimal, error) {
	switch v := value.(type) {
	case decimal.Decimal:
		return v, nil
	case float64:
		return decimal.NewFromFloat(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case string:
		parsed, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return decimal.Zero, ErrInvalidNumericValue
		}
		return parsed, nil
	default:
		return decimal.Zero, ErrInvalidNumericValue
	}
}

// isEmpty is null/empty-string/empty-collection aware
func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []string:
		return len(v) == 0
	case decimal.Decimal:
		return v.IsZero()
	case int:
		return v == 0
	default:
		return false
	}
}
