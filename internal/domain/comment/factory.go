package comment

import "time"

func New(content string, author Author) Comment {
	now := time.Now().UTC()

	return Comment{
		Content:   content,
		Author:    author,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
