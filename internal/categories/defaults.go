package categories

import "github.com/extrato-dev/extrato/internal/model"

// Defaults returns the starter categories seeded for a new user.
func Defaults() []model.Category {
	return []model.Category{
		{Name: "Custos Fixos", Icon: "home", Color: "#0ea5e9"},
		{Name: "iFood", Icon: "coffee", Color: "#f97316"},
		{Name: "Mercado", Icon: "shopping-bag", Color: "#14b8a6"},
		{Name: "Lazer & Viagens", Icon: "gift", Color: "#a855f7"},
		{Name: "Transporte", Icon: "car", Color: "#facc15"},
		{Name: "Saúde & Bem-estar", Icon: "dumbbell", Color: "#ec4899"},
		{Name: "Poupança", Icon: "piggy-bank", Color: "#22d3ee"},
	}
}
