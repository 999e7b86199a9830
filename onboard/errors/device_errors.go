package errors

import "fmt"

type JointNameError struct {
	Name string
}

func (err JointNameError) Error() string {
	return fmt.Sprintf("no such joint %s", err.Name)
}

// AngleRangeError is returned when a joint is asked to move outside of the
// range it was declared with. Nothing is clamped on the caller's behalf.
type AngleRangeError struct {
	Joint    string
	Angle    float64
	Min, Max float64
}

func (err AngleRangeError) Error() string {
	if len(err.Joint) == 0 {
		err.Joint = "UNKNOWN"
	}

	return fmt.Sprintf("angle %.2f out of range for joint %s; must be within [%.2f, %.2f]", err.Angle, err.Joint, err.Min, err.Max)
}

type MessageError struct {
	Message string
	Reason  string
}

func (err MessageError) Error() string {
	return fmt.Sprintf("invalid say message %q: %s", err.Message, err.Reason)
}
