package service

import "blogr/internal/models"

// CheckOwnership gates access to post. With enforce set, only the author may
// have it.
func CheckOwnership(post *models.Post, current *models.User, enforce bool) (*models.Post, error) {
	if post == nil {
		return nil, &models.NotFoundError{Resource: "post"}
	}

	if !enforce {
		return post, nil
	}

	if current == nil || post.AuthorID != current.ID {
		return nil, models.ErrForbidden
	}

	return post, nil
}
