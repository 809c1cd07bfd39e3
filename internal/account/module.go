package account

import (
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// NewModule provides the gorm-backed Repository.
func NewModule() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				func(db *gorm.DB) Repository {
					return NewRepository(db)
				},
			),
		),
	)
}
