package domain

// CustomerStatus is the subset of customer state this engine consults at posting
// validation time. Customer lifecycle management itself is an external collaborator.
type CustomerStatus string

const (
	CustomerActive      CustomerStatus = "ACTIVE"
	CustomerBlacklisted CustomerStatus = "BLACKLISTED"
	CustomerDeceased    CustomerStatus = "DECEASED"
	CustomerDissolved   CustomerStatus = "DISSOLVED"
)

// Customer is a read-only projection of the account owner.
type Customer struct {
	CustomerID string         `json:"customerID"`
	Status     CustomerStatus `json:"status"`
	AuditFields
}

// CanTransact reports whether transactions may post for accounts owned by this
// customer, absent an override transaction code.
func (c *Customer) CanTransact() bool {
	switch c.Status {
	case CustomerBlacklisted, CustomerDeceased, CustomerDissolved:
		return false
	}
	return true
}
