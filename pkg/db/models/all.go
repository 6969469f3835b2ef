package models

// All lists every persisted model, in dependency order, for AutoMigrate in tests.
func All() []any {
	return []any{
		&User{},
		&Product{},
		&CartLine{},
		&Order{},
		&OrderLine{},
		&Expense{},
		&OutboxEvent{},
	}
}
