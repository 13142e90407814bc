// Package schema holds the PocketBase collection definitions used by the
// migrations and by tests that need real records.
package schema

import (
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"
)

const (
	Events       = "events"
	Statistics   = "statistics"
	Products     = "products"
	Posts        = "posts"
	TeamMembers  = "team_members"
	Sponsors     = "sponsors"
	Appointments = "appointments"
	Heartbeats   = "heartbeats"
	Users        = "users"
)

// publicRead makes a collection listable through the PocketBase REST API
// without auth. Writes stay superuser-only; the admin panel writes
// server side.
func publicRead(c *core.Collection) {
	c.ListRule = types.Pointer("")
	c.ViewRule = types.Pointer("")
}

func timestamps(c *core.Collection) {
	c.Fields.Add(
		&core.AutodateField{Name: "created", OnCreate: true},
		&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true},
	)
}

func NewEventsCollection() *core.Collection {
	c := core.NewBaseCollection(Events)
	publicRead(c)
	c.Fields.Add(
		&core.TextField{Name: "title", Required: true, Max: 200},
		&core.EditorField{Name: "description"},
		&core.DateField{Name: "date", Required: true},
		&core.TextField{Name: "location", Max: 200},
		&core.TextField{Name: "participants", Max: 200},
		&core.SelectField{
			Name:      "status",
			Required:  true,
			MaxSelect: 1,
			Values:    []string{"upcoming", "ongoing", "completed", "cancelled"},
		},
		&core.TextField{Name: "category", Max: 100},
		&core.NumberField{Name: "price", Min: types.Pointer(0.0)},
		&core.URLField{Name: "image_url"},
	)
	timestamps(c)
	c.AddIndex("idx_events_date", false, "`date`", "")
	return c
}

func NewStatisticsCollection() *core.Collection {
	c := core.NewBaseCollection(Statistics)
	publicRead(c)
	c.Fields.Add(
		&core.SelectField{
			Name:      "key",
			Required:  true,
			MaxSelect: 1,
			Values:    []string{"delegados", "eventos_realizados", "valores_arrecadados"},
		},
		&core.NumberField{Name: "value", Min: types.Pointer(0.0)},
		&core.TextField{Name: "label", Max: 100},
		&core.TextField{Name: "description", Max: 500},
	)
	timestamps(c)
	c.AddIndex("idx_statistics_key", true, "`key`", "")
	return c
}

func NewProductsCollection() *core.Collection {
	c := core.NewBaseCollection(Products)
	publicRead(c)
	c.Fields.Add(
		&core.TextField{Name: "name", Required: true, Max: 200},
		&core.EditorField{Name: "description"},
		&core.NumberField{Name: "price", Min: types.Pointer(0.0)},
		&core.TextField{Name: "category", Max: 100},
		&core.URLField{Name: "image_url"},
		&core.BoolField{Name: "active"},
		&core.NumberField{Name: "sort_order", OnlyInt: true, Min: types.Pointer(0.0)},
	)
	timestamps(c)
	return c
}

func NewPostsCollection() *core.Collection {
	c := core.NewBaseCollection(Posts)
	c.ListRule = types.Pointer("published = true")
	c.ViewRule = types.Pointer("published = true")
	c.Fields.Add(
		&core.TextField{Name: "title", Required: true, Max: 200},
		&core.TextField{Name: "slug", Required: true, Max: 200, Pattern: `^[a-z0-9]+(?:-[a-z0-9]+)*$`},
		&core.TextField{Name: "excerpt", Max: 500},
		&core.TextField{Name: "content"},
		&core.URLField{Name: "cover_url"},
		&core.TextField{Name: "author", Max: 100},
		&core.BoolField{Name: "published"},
		&core.DateField{Name: "published_at"},
	)
	timestamps(c)
	c.AddIndex("idx_posts_slug", true, "`slug`", "")
	return c
}

func NewTeamMembersCollection() *core.Collection {
	c := core.NewBaseCollection(TeamMembers)
	publicRead(c)
	c.Fields.Add(
		&core.TextField{Name: "name", Required: true, Max: 150},
		&core.SelectField{
			Name:      "role",
			Required:  true,
			MaxSelect: 1,
			Values:    []string{"diretoria", "voluntario", "mentor"},
		},
		&core.TextField{Name: "position", Max: 150},
		&core.TextField{Name: "bio", Max: 2000},
		&core.URLField{Name: "photo_url"},
		&core.TextField{Name: "instagram", Max: 100},
		&core.URLField{Name: "linkedin"},
		&core.NumberField{Name: "sort_order", OnlyInt: true, Min: types.Pointer(0.0)},
		&core.BoolField{Name: "active"},
	)
	timestamps(c)
	c.AddIndex("idx_team_members_role", false, "`role`", "")
	return c
}

func NewSponsorsCollection() *core.Collection {
	c := core.NewBaseCollection(Sponsors)
	publicRead(c)
	c.Fields.Add(
		&core.TextField{Name: "name", Required: true, Max: 150},
		&core.URLField{Name: "logo_url"},
		&core.URLField{Name: "website"},
		&core.TextField{Name: "tier", Max: 50},
		&core.NumberField{Name: "sort_order", OnlyInt: true, Min: types.Pointer(0.0)},
		&core.BoolField{Name: "active"},
	)
	timestamps(c)
	return c
}

func NewAppointmentsCollection() *core.Collection {
	c := core.NewBaseCollection(Appointments)
	c.Fields.Add(
		&core.TextField{Name: "name", Required: true, Max: 150},
		&core.EmailField{Name: "email", Required: true},
		&core.TextField{Name: "phone", Max: 30},
		&core.TextField{Name: "school", Max: 150},
		&core.DateField{Name: "preferred_date"},
		&core.TextField{Name: "message", Max: 2000},
		&core.SelectField{
			Name:      "status",
			Required:  true,
			MaxSelect: 1,
			Values:    []string{"pending", "confirmed", "cancelled"},
		},
	)
	timestamps(c)
	return c
}

func NewHeartbeatsCollection() *core.Collection {
	c := core.NewBaseCollection(Heartbeats)
	c.Fields.Add(
		&core.TextField{Name: "token", Required: true, Max: 64},
		&core.SelectField{
			Name:      "source",
			MaxSelect: 1,
			Values:    []string{"ticker", "focus", "fallback"},
		},
	)
	timestamps(c)
	return c
}

// registrationDeadlineField was added to events after launch.
const registrationDeadlineField = `{
	"hidden": false,
	"id": "date2873310918",
	"max": "",
	"min": "",
	"name": "registration_deadline",
	"presentable": false,
	"required": false,
	"system": false,
	"type": "date"
}`

const registrationDeadlineFieldID = "date2873310918"

// AddRegistrationDeadline inserts the registration_deadline field right
// after price.
func AddRegistrationDeadline(c *core.Collection) error {
	return c.Fields.AddMarshaledJSONAt(9, []byte(registrationDeadlineField))
}

func RemoveRegistrationDeadline(c *core.Collection) {
	c.Fields.RemoveById(registrationDeadlineFieldID)
}

// All returns every collection owned by the site, in creation order and in
// their current shape.
func All() []*core.Collection {
	events := NewEventsCollection()
	_ = AddRegistrationDeadline(events)

	return []*core.Collection{
		events,
		NewStatisticsCollection(),
		NewProductsCollection(),
		NewPostsCollection(),
		NewTeamMembersCollection(),
		NewSponsorsCollection(),
		NewAppointmentsCollection(),
		NewHeartbeatsCollection(),
	}
}

// Ensure saves every collection missing from app. Tests use it on top of
// PocketBase's test data dir.
func Ensure(app core.App) error {
	for _, c := range All() {
		if _, err := app.FindCollectionByNameOrId(c.Name); err == nil {
			continue
		}
		if err := app.Save(c); err != nil {
			return err
		}
	}
	return nil
}
