package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		collection := core.NewBaseCollection("games")
		collection.ListRule = nil
		collection.ViewRule = nil
		collection.CreateRule = nil
		collection.UpdateRule = nil
		collection.DeleteRule = nil

		// join code, unique per game
		collection.Fields.Add(&core.TextField{
			Name:     "code",
			Required: true,
			Max:      8,
		})

		collection.Fields.Add(&core.TextField{
			Name:     "host_id",
			Required: true,
			Max:      100,
		})

		collection.Fields.Add(&core.NumberField{
			Name:     "capacity",
			Required: true,
			OnlyInt:  true,
		})

		collection.Fields.Add(&core.BoolField{
			Name: "completed",
		})

		collection.Fields.Add(&core.DateField{
			Name: "completed_at",
		})

		// full session snapshot as written by the registry mirror
		collection.Fields.Add(&core.JSONField{
			Name:     "state",
			Required: true,
			MaxSize:  102400,
		})

		collection.Fields.Add(&core.AutodateField{
			Name:     "created",
			OnCreate: true,
		})

		collection.Indexes = []string{
			"CREATE UNIQUE INDEX idx_games_code ON games(code)",
			"CREATE INDEX idx_games_completed ON games(completed)",
		}

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("games")
		if err != nil {
			return nil
		}
		return app.Delete(collection)
	})
}
