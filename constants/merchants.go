package constants

// DefaultMerchantDomains is the built-in wine merchant allow-list, matched by
// substring against the lower-cased From header. Override with the
// MERCHANT_DOMAINS environment variable.
var DefaultMerchantDomains = []string{
	"chaisdoeuvre.com",
	"chaisdoeuvre.fr",
	"idealwine.com",
	"idealwine.fr",
	"laroutedesblancs.com",
	"laroutedesblancs.fr",
	"purjus.com",
	"purjus.fr",
	"buveurdevin.com",
	"buveurdevin.fr",
	"vpoint.fr",
	"vpoint.com",
	"conceptriesling.com",
	"conceptriesling.fr",
	"vivino.com",
	"wine.com",
	"totalwine.com",
	"wineenthusiast.com",
	"wine-searcher.com",
	"klwines.com",
	"winelibrary.com",
}
