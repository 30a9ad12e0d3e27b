package models

const RoleAdmin = "admin"

// Claims are carried by the API bearer token. A token bound to a company only
// reads that company's data; admins read everything.
type Claims struct {
	Subject   string `json:"sub"`
	Role      string `json:"role"`
	CompanyID string `json:"company_id,omitempty"`
}

func (c *Claims) CanAccess(companyID string) bool {
	if c == nil {
		return false
	}
	return c.Role == RoleAdmin || c.CompanyID == "" || c.CompanyID == companyID
}
