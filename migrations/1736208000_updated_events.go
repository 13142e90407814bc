package migrations

import (
	"magis-site/internal/schema"

	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId(schema.Events)
		if err != nil {
			return err
		}

		// add field
		if err := schema.AddRegistrationDeadline(collection); err != nil {
			return err
		}

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId(schema.Events)
		if err != nil {
			return err
		}

		// remove field
		schema.RemoveRegistrationDeadline(collection)

		return app.Save(collection)
	})
}
