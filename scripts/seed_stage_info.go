package main

import (
	"fmt"

	"conveyancing-server/conveyancing"
	"conveyancing-server/services"
	"conveyancing-server/storage"
)

func main() {
	// Initialize database
	storage.InitializeDB()

	// Seed placeholder explanations for every preset stage
	stageInfo := services.NewStageInfoService()
	for _, preset := range conveyancing.PresetStages {
		stageInfo.SeedPlaceholder(preset.Stage)
	}

	fmt.Println("Stage info seeding completed successfully!")
}
