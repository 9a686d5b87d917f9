package auth

import (
	"net/http"

	"github.com/rpupo63/newsroom-backend/errs"
)

type Resource int

const (
	Posts Resource = iota
	Categories
	Tags
	Users
	Groups
	Comments
	Contacts
	Newsletters
)

var resourceNames = map[Resource]string{
	Posts:       "posts",
	Categories:  "categories",
	Tags:        "tags",
	Users:       "users",
	Groups:      "groups",
	Comments:    "comments",
	Contacts:    "contacts",
	Newsletters: "newsletters",
}

func (r Resource) String() string {
	return resourceNames[r]
}

type Action int

const (
	List Action = iota
	Retrieve
	Create
	Update
	PartialUpdate
	Destroy
	// Publish covers the editorial endpoints outside plain CRUD.
	Publish
)

// ActionFor maps an HTTP method on a collection (hasID false) or a single
// item (hasID true) to its action.
func ActionFor(method string, hasID bool) (Action, bool) {
	switch method {
	case http.MethodGet, http.MethodHead:
		if hasID {
			return Retrieve, true
		}
		return List, true
	case http.MethodPost:
		return Create, !hasID
	case http.MethodPut:
		return Update, hasID
	case http.MethodPatch:
		return PartialUpdate, hasID
	case http.MethodDelete:
		return Destroy, hasID
	}
	return 0, false
}

// Access is what an action requires of the caller.
type Access int

const (
	Authenticated Access = iota
	Public
	Denied
)

// permissions lists every exception to Authenticated.
var permissions = map[Resource]map[Action]Access{
	Posts:       {List: Public, Retrieve: Public},
	Categories:  {List: Public, Retrieve: Public},
	Tags:        {List: Public, Retrieve: Public},
	Contacts:    {Create: Public, Update: Denied, PartialUpdate: Denied},
	Newsletters: {Create: Public, Update: Denied, PartialUpdate: Denied},
}

// AccessFor returns the access rule for an action on a resource.
func AccessFor(res Resource, act Action) Access {
	if access, ok := permissions[res][act]; ok {
		return access
	}
	return Authenticated
}

// Authorize returns nil when p may perform act on res. p is nil for anonymous callers.
func Authorize(res Resource, act Action, method string, p *Principal) error {
	switch AccessFor(res, act) {
	case Public:
		return nil
	case Denied:
		return errs.NewMethodNotAllowedError(method)
	}
	if p == nil {
		return errs.NewAuthenticationRequiredError()
	}
	return nil
}
