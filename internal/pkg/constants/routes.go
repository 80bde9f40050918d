package constants

// Static route constants
const (
	LoginRoute  = "/login"
	ShopsRoute  = "/shops"
	PublicRoute = "/"

	// BillingRouteSuffix is appended to a shop path for the billing
	// management page (the hard-mode redirect target).
	BillingRouteSuffix = "/billing"
)

// ShopBillingRoute builds the billing-management path for a shop.
func ShopBillingRoute(shopPublicID string) string {
	return ShopsRoute + "/" + shopPublicID + BillingRouteSuffix
}
