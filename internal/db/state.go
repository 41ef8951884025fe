package db

// Catalog tables live in the game schema so the read-only role can be
// granted exactly that schema.
const Schema = "game"

type State struct {
	ID   uint   `gorm:"column:state_id;primaryKey"`
	Name string `gorm:"column:state_name;size:50;not null"`
}

func (State) TableName() string {
	return Schema + ".state"
}

type Animal struct {
	ID   uint   `gorm:"column:animal_id;primaryKey"`
	Name string `gorm:"column:animal_name;size:50;not null"`
}

func (Animal) TableName() string {
	return Schema + ".animal"
}
