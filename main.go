package main

import (
	"context"
	"os"

	"hikvision-integration/cli"
	_ "time/tzdata" // company timezones must resolve on minimal images
)

// @title HikVision Integration API
// @version 1.0
// @description Turns HikVision face-authentication events into Bitrix24 or local workday records.
//
// @host localhost:3000
// @BasePath /
// @schemes http https
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and a PASETO token.
//
// @tag.name Webhook
// @tag.description Camera event intake
//
// @tag.name Reports
// @tag.description Attendance records and employee directories
//
// @tag.name Uploads
// @tag.description Admin-only schedule and record uploads
//
// @tag.name Files
// @tag.description Raw data file downloads
func main() {
	if err := cli.NewRootCommand().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
