package notify

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/dmitrymomot/hirewire/internal/digest"
	"github.com/dmitrymomot/hirewire/internal/store"
)

const snippetLimit = 180

var (
	stripPolicy = bluemonday.StrictPolicy()
	usdPrinter  = message.NewPrinter(language.AmericanEnglish)
)

// listingView is one listing prepared for the user digest template.
type listingView struct {
	Title        string
	Organization string
	Wage         string
	Location     string
	Snippet      string
}

// applicationView is one application prepared for the org digest template.
type applicationView struct {
	ApplicantName string
	ListingTitle  string
	Rating        string
}

type userDigestData struct {
	Name     string
	Count    int
	Listings []listingView
}

type orgDigestData struct {
	Name         string
	Count        int
	Applications []applicationView
}

func buildUserDigestData(event digest.UserDigestEvent) userDigestData {
	views := make([]listingView, 0, len(event.Listings))
	for _, listing := range event.Listings {
		views = append(views, listingView{
			Title:        listing.Title,
			Organization: listing.OrganizationName,
			Wage:         formatWage(listing.Wage, listing.WageInterval),
			Location:     formatLocation(listing),
			Snippet:      snippet(listing.Description),
		})
	}
	return userDigestData{Name: event.Recipient.Name, Count: len(views), Listings: views}
}

func buildOrgDigestData(event digest.OrgDigestEvent) orgDigestData {
	views := make([]applicationView, 0, len(event.Applications))
	for _, app := range event.Applications {
		name := app.ApplicantName
		if name == "" {
			name = "An applicant"
		}
		views = append(views, applicationView{
			ApplicantName: name,
			ListingTitle:  app.ListingTitle,
			Rating:        formatRating(app.Rating),
		})
	}
	return orgDigestData{Name: event.Recipient.Name, Count: len(views), Applications: views}
}

func formatWage(wage *int, interval string) string {
	if wage == nil {
		return ""
	}

	amount := usdPrinter.Sprintf("%v", currency.Symbol(currency.USD.Amount(*wage)))
	switch interval {
	case store.WageIntervalHourly:
		return amount + " / hour"
	default:
		return amount + " / year"
	}
}

func formatLocation(listing store.ListingSummary) string {
	if strings.EqualFold(listing.LocationRequirement, "remote") {
		return "Remote"
	}
	switch {
	case listing.City != "" && listing.StateAbbreviation != "":
		return listing.City + ", " + strings.ToUpper(listing.StateAbbreviation)
	case listing.City != "":
		return listing.City
	case listing.StateAbbreviation != "":
		return strings.ToUpper(listing.StateAbbreviation)
	default:
		return ""
	}
}

func formatRating(rating *int) string {
	if rating == nil {
		return "unrated"
	}
	return fmt.Sprintf("%d/5", *rating)
}

// snippet strips markup from a listing description and truncates it on a
// word boundary.
func snippet(description string) string {
	clean := strings.Join(strings.Fields(stripPolicy.Sanitize(description)), " ")
	if len(clean) <= snippetLimit {
		return clean
	}

	cut := clean[:snippetLimit]
	if idx := strings.LastIndexFunc(cut, unicode.IsSpace); idx > 0 {
		cut = cut[:idx]
	}
	return cut + "…"
}
