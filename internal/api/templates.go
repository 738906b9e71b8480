package api

// Fixture values shared by tests and local tooling.

// UserTemplate returns the canonical fixture user.
func UserTemplate() User {
	return User{
		ID:   1,
		Name: "Blob",
		Avatar: UserAvatar{
			Small:  "https://assets.backer.space/avatars/blob-small.png",
			Medium: "https://assets.backer.space/avatars/blob-medium.png",
			Large:  "https://assets.backer.space/avatars/blob-large.png",
		},
		Stats: UserStats{BackedProjectsCount: 1},
	}
}

// ProjectTemplate returns the well-known default project.
func ProjectTemplate() Project {
	creator := UserTemplate()
	creator.ID = 2
	creator.Name = "Creator Blob"
	return Project{
		ID:           1,
		Name:         "The Project",
		Slug:         "a-project",
		Blurb:        "A fun project.",
		State:        ProjectStateLive,
		Creator:      creator,
		Country:      "US",
		Currency:     "USD",
		Goal:         2000,
		Pledged:      1000,
		BackersCount: 10,
		LaunchedAt:   1475361315,
		Deadline:     1477953315,
	}
}

// DiscoveryEnvelopeTemplate returns a one-page listing holding ProjectTemplate.
func DiscoveryEnvelopeTemplate() DiscoveryEnvelope {
	return DiscoveryEnvelope{
		Projects: []Project{ProjectTemplate()},
		URLs: DiscoveryURLs{API: DiscoveryAPIURLs{
			MoreProjects: "https://api.backer.space/v1/discover?page=2",
		}},
		Stats: DiscoveryStats{Count: 1},
	}
}

// AccessTokenEnvelopeTemplate returns a fixture login for UserTemplate.
func AccessTokenEnvelopeTemplate() AccessTokenEnvelope {
	return AccessTokenEnvelope{AccessToken: "deadbeef", User: UserTemplate()}
}
