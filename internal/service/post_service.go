package service

import (
	"context"

	"blogr/internal/models"
	"blogr/internal/repository"
)

type PostService interface {
	ListPosts(ctx context.Context) ([]models.Post, error)
	CreatePost(ctx context.Context, req models.PostRequest, authorID int64) (*models.Post, error)
	GetPost(ctx context.Context, postID int64, current *models.User, enforce bool) (*models.Post, error)
	UpdatePost(ctx context.Context, postID int64, req models.PostRequest, current *models.User) (*models.Post, error)
	DeletePost(ctx context.Context, postID int64, current *models.User) error
}

type postService struct {
	postRepo repository.PostRepository
}

func NewPostService(postRepo repository.PostRepository) PostService {
	return &postService{postRepo: postRepo}
}

func (p *postService) ListPosts(ctx context.Context) ([]models.Post, error) {
	return p.postRepo.List(ctx)
}

func (p *postService) CreatePost(ctx context.Context, req models.PostRequest, authorID int64) (*models.Post, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	post := &models.Post{
		Title:    req.Title,
		Body:     req.Body,
		AuthorID: authorID,
	}

	if err := p.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	return post, nil
}

func (p *postService) GetPost(ctx context.Context, postID int64, current *models.User, enforce bool) (*models.Post, error) {
	post, err := p.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	return CheckOwnership(post, current, enforce)
}

// UpdatePost overwrites title and body. Ownership is checked before the input
// is validated, so a stranger gets ErrForbidden even for an empty form.
func (p *postService) UpdatePost(ctx context.Context, postID int64, req models.PostRequest, current *models.User) (*models.Post, error) {
	post, err := p.GetPost(ctx, postID, current, true)
	if err != nil {
		return nil, err
	}

	if err := validateStruct(req); err != nil {
		return nil, err
	}

	post.Title = req.Title
	post.Body = req.Body

	if err := p.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}

	return post, nil
}

func (p *postService) DeletePost(ctx context.Context, postID int64, current *models.User) error {
	if _, err := p.GetPost(ctx, postID, current, true); err != nil {
		return err
	}

	return p.postRepo.Delete(ctx, postID)
}
