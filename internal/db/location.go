package db

type Location struct {
	ID      uint   `gorm:"column:location_id;primaryKey"`
	Name    string `gorm:"column:location_name;size:50;not null"`
	Biome   string `gorm:"column:location_biome;size:50;not null"`
	StateID uint   `gorm:"column:state_id;not null"`
}

func (Location) TableName() string {
	return Schema + ".location"
}

type LocationAnimal struct {
	LocationID uint `gorm:"column:location_id;primaryKey"`
	AnimalID   uint `gorm:"column:animal_id;primaryKey"`
}

func (LocationAnimal) TableName() string {
	return Schema + ".location_animals"
}
