// Package authorization includes HTTP authorization methods.
package authorization

// Method is an authorization method such as 'Basic' or 'Bearer'.
type Method uint8

const (
	// None represents no authorization method.
	None Method = iota
	// Basic represents Basic Authentication.
	Basic
	// Bearer represents Bearer Authentication (token authentication).
	Bearer
)

// String returns the string representation of the method.
func (m Method) String() string {
	switch m {
	case None:
		return "none"
	case Basic:
		return "basic"
	case Bearer:
		return "bearer"
	default:
		return "unknown"
	}
}
