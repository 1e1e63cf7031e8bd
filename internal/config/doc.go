// Package config loads weekplanner settings with viper: built-in defaults,
// an optional YAML file, a .env file and WEEKPLANNER_* environment variables.
//
// Example weekplanner.yaml:
//
//	backend: google
//	zone: Europe/Berlin
//	google:
//	  account: work
//	scheduling:
//	  meeting_duration: 30m
//	  tracked_attendees:
//	    - alice@example.com
package config
