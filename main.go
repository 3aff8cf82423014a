/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>

*/
// @title           Reimburse Gin API
// @version         1.0
// @description     Reimbursement request workflow API server with settlement consolidation and budget tracking
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT token from /auth/login
package main

import "github.com/trustspirit/reimburse-gin/cmd"

func main() {
	cmd.Execute()
}
