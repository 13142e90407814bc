package migrations

import (
	"magis-site/internal/schema"
	"magis-site/models"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

var statisticLabels = map[string]string{
	models.StatDelegados:          "Delegados formados",
	models.StatEventosRealizados:  "Eventos realizados",
	models.StatValoresArrecadados: "Valores arrecadados",
}

// Seeds one zero-valued row per statistic key so the admin Status screen
// always has something to edit.
func init() {
	m.Register(func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId(schema.Statistics)
		if err != nil {
			return err
		}

		for _, key := range models.StatisticKeys {
			if _, err := app.FindFirstRecordByData(collection, "key", key); err == nil {
				continue
			}
			record := core.NewRecord(collection)
			record.Set("key", key)
			record.Set("value", 0)
			record.Set("label", statisticLabels[key])
			if err := app.Save(record); err != nil {
				return err
			}
		}
		return nil
	}, func(app core.App) error {
		_, err := app.DB().Delete(schema.Statistics, dbx.HashExp{"value": 0}).Execute()
		return err
	})
}
