package models

// Profile is the user profile document stored next to the cart and
// favorites fields under the user's id.
type Profile struct {
	FullName string
	Email    string
}
