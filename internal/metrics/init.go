package metrics

// InitializeMetrics pre-populates the expected label combinations so that
// every series is exported from the first scrape.
func InitializeMetrics(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)

	for _, status := range []string{"success", "failure"} {
		AuthAttemptsTotal.WithLabelValues(status)
	}

	for _, reason := range []string{"unauthenticated", "forbidden", "not_owner"} {
		GuardDenialsTotal.WithLabelValues(reason)
	}

	for _, result := range []string{"favorited", "unfavorited"} {
		FavoriteTogglesTotal.WithLabelValues(result)
	}

	for _, kind := range []string{"users", "books", "albums", "visits"} {
		ContentTotal.WithLabelValues(kind)
	}

	for _, op := range []string{"create_user", "validate_credentials", "create_session",
		"lookup_session", "create_book", "create_album", "create_chapter", "delete_chapter",
		"create_note", "delete_note", "toggle_favorite", "record_visit", "search_books",
		"count_visits", "export_visits", "delete_author"} {
		DBQueryTotal.WithLabelValues(op, "success")
		DBQueryTotal.WithLabelValues(op, "error")
		DBQueryDuration.WithLabelValues(op)
	}
}
