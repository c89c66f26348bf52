package main

import "github.com/Jdholguin19/tareas/internal/app"

// @title           Mis Tareas API
// @version         1.0
// @description     Personal task manager with subtasks, progress aggregation and daily views.

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	app.Run()
}
