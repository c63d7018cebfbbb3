/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package view

import "github.com/HamedShams/sprintdeck/internal/domain"

// MaxThreadDepth is a presentation cap: renderers may flatten replies nested
// deeper than this. The tree itself stores every level.
const MaxThreadDepth = 5

// BuildThread reconstructs a reply tree from a flat comment list. A comment
// whose parentId is missing from the batch becomes a root; comments are never
// dropped. Root order and per-node reply order both follow first-seen input
// order.
func BuildThread(comments []domain.Comment) []*domain.CommentNode {
    nodes := make(map[string]*domain.CommentNode, len(comments))
    ordered := make([]*domain.CommentNode, 0, len(comments))
    for _, c := range comments {
        n := &domain.CommentNode{Comment: c, Replies: []*domain.CommentNode{}}
        nodes[c.ID] = n
        ordered = append(ordered, n)
    }
    var roots []*domain.CommentNode
    for _, n := range ordered {
        if n.ParentID != "" {
            if parent, ok := nodes[n.ParentID]; ok && parent != n {
                parent.Replies = append(parent.Replies, n)
                continue
            }
            // stale or missing parent: fall back to root
        }
        roots = append(roots, n)
    }
    return roots
}
