package service

import (
	"chronicle/internal/models"
)

// BuildCommentTree assembles flat comment rows into the nested reply tree.
// Input order is preserved at every level, so rows fetched oldest-first come
// out oldest-first among siblings too. Soft-deleted rows are skipped, and a
// reply whose parent is missing from the input (deleted, or never existed)
// is dropped rather than promoted to the top level.
func BuildCommentTree(comments []*models.Comment) []*models.CommentNode {
	nodes := make(map[uint]*models.CommentNode, len(comments))
	order := make([]*models.Comment, 0, len(comments))

	for _, c := range comments {
		if c.DeletedAt.Valid {
			continue
		}
		nodes[c.ID] = &models.CommentNode{
			ID:              c.ID,
			Content:         c.Content,
			CreatedAt:       c.CreatedAt,
			UserID:          c.UserID,
			UserName:        c.Commenter.DisplayName(),
			ParentCommentID: c.ParentCommentID,
			Replies:         []*models.CommentNode{},
		}
		order = append(order, c)
	}

	roots := []*models.CommentNode{}
	for _, c := range order {
		node := nodes[c.ID]
		if c.ParentCommentID == nil {
			roots = append(roots, node)
			continue
		}
		// A row naming itself as parent would close a cycle.
		if *c.ParentCommentID == c.ID {
			continue
		}
		parent, ok := nodes[*c.ParentCommentID]
		if !ok {
			continue
		}
		parent.Replies = append(parent.Replies, node)
	}
	return roots
}
