package service

import (
	"chronicle/internal/models"
)

// newPostView flattens a loaded post into its read aggregate. Comment rows
// are assembled into the reply tree only when withComments is set; listing
// rows carry the count alone.
func newPostView(post *models.Post, withComments bool) *models.PostView {
	view := &models.PostView{
		ID:                  post.ID,
		Title:               post.Title,
		Content:             post.Content,
		Excerpt:             post.Excerpt,
		FeaturedImageURL:    post.FeaturedImageURL,
		AdditionalImageURLs: post.AdditionalImageURLs,
		Views:               post.Views,
		Featured:            post.Featured,
		LatestNews:          post.LatestNews,
		CreatedAt:           post.CreatedAt,
		Slug:                post.Slug,
		AuthorID:            post.UserID,
		AuthorName:          post.Author.DisplayName(),
		CommentsCount:       post.CommentsCount,
		LikesCount:          post.LikesCount,
		Tags:                make([]string, 0, len(post.Tags)),
	}
	if post.CategoryID != nil {
		view.CategoryID = *post.CategoryID
	}
	if post.Category != nil {
		view.CategoryName = post.Category.Name
	}
	for _, tag := range post.Tags {
		view.Tags = append(view.Tags, tag.Name)
	}
	if withComments {
		comments := make([]*models.Comment, len(post.Comments))
		for i := range post.Comments {
			comments[i] = &post.Comments[i]
		}
		view.Comments = BuildCommentTree(comments)
	}
	return view
}

func newPostViews(posts []*models.Post) []*models.PostView {
	views := make([]*models.PostView, 0, len(posts))
	for _, post := range posts {
		views = append(views, newPostView(post, false))
	}
	return views
}

func newPostSummary(post *models.Post) *models.PostSummary {
	return &models.PostSummary{
		ID:         post.ID,
		Title:      post.Title,
		CreatedAt:  post.CreatedAt,
		AuthorName: post.Author.DisplayName(),
		Featured:   post.Featured,
		LatestNews: post.LatestNews,
		LikesCount: post.LikesCount,
	}
}
