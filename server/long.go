package server

import (
	"fmt"
	"strconv"
)

// Long is a 64 bit signed integer scalar. Second-based unix timestamps
// outlive the 32 bit range GraphQL gives Int, so the schema carries them
// as Long.
type Long int64

// ImplementsGraphQLType returns true if Long implements the provided GraphQL type.
func (Long) ImplementsGraphQLType(name string) bool { return name == "Long" }

// UnmarshalGraphQL unmarshals the provided GraphQL query data.
func (l *Long) UnmarshalGraphQL(input interface{}) error {
	switch input := input.(type) {
	case string:
		value, err := strconv.ParseInt(input, 10, 64)
		if err != nil {
			return err
		}
		*l = Long(value)
		return nil
	case int32:
		*l = Long(input)
		return nil
	case float64:
		*l = Long(input)
		return nil
	default:
		return fmt.Errorf("unexpected type %T for Long", input)
	}
}
