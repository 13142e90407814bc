package migrations

import (
	"magis-site/internal/schema"

	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		return app.Save(schema.NewPostsCollection())
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId(schema.Posts)
		if err != nil {
			return err
		}

		return app.Delete(collection)
	})
}
