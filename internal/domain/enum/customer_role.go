package enum

// CustomerRole is carried in the customer's access token.
type CustomerRole string

const (
	CustomerRoleRetailBuyer CustomerRole = "retail-buyer"
	CustomerRoleReseller    CustomerRole = "reseller"
	CustomerRoleStaff       CustomerRole = "staff"
)

// ReceivesInvoice reports whether settled orders are invoiced by email.
func (r CustomerRole) ReceivesInvoice() bool {
	return r == CustomerRoleRetailBuyer
}
