// Package config provides configuration structures and utilities for
// mailspider. It defines the main options for seeding a crawl, bounding
// per-domain page budgets, link prioritization keywords, and report
// generation preferences.
package config
