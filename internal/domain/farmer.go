package domain

// FarmerContact is a registered farmer reachable by SMS.
type FarmerContact struct {
	PhoneNumber string
}
