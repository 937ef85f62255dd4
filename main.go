package main

import "cwportal/internal/app"

// @title           China Wholesale Portal API
// @version         1.0
// @description     Phone OTP authentication and SMS dispatch for the China Wholesale portal.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
func main() {
	app.Run()
}
