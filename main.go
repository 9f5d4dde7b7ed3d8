// @title           TourSite Subscription API
// @version         1.0
// @description     Double opt-in newsletter subscription API for the TourSite public site and admin dashboard.

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import "toursite/internal/app"

func main() {
	app.Run()
}
