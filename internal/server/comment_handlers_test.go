package server

import (
	"fmt"
	"net/http"
	"testing"

	"alphaboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Root comment, nested reply, then the whole tree back out.
func TestCommentThreadRoundTrip(t *testing.T) {
	t.Parallel()
	app, _ := newTestApp(t)
	auth := bearerToken(t, 1, "Author")

	_, created := doJSON(t, app, http.MethodPost, "/api/tickers/AAPL/posts", auth,
		map[string]string{"title": "thread", "body": "discuss"})
	postID := int(created["id"].(float64))
	commentsURL := fmt.Sprintf("/api/posts/%d/comments", postID)

	resp, c1 := doJSON(t, app, http.MethodPost, commentsURL, auth,
		map[string]interface{}{"body": "first"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "0001", c1["path"])
	assert.EqualValues(t, 0, c1["depth"])

	c1ID := int(c1["id"].(float64))
	resp, c2 := doJSON(t, app, http.MethodPost, commentsURL, auth,
		map[string]interface{}{"body": "reply", "parent_comment_id": c1ID})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "0001.0001", c2["path"])
	assert.EqualValues(t, 1, c2["depth"])

	resp, tree := doJSONList(t, app, http.MethodGet, commentsURL, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, tree, 1)
	root := tree[0].(map[string]interface{})
	assert.EqualValues(t, c1ID, root["id"])
	replies := root["replies"].([]interface{})
	require.Len(t, replies, 1)
	assert.Equal(t, "reply", replies[0].(map[string]interface{})["body"])

	// The post's counters track the thread.
	_, post := doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/posts/%d", postID), "", nil)
	assert.EqualValues(t, 2, post["comment_count"])
}

// Replies are accepted down to depth six and rejected one level further.
func TestCommentDepthCeiling(t *testing.T) {
	t.Parallel()
	app, _ := newTestApp(t)
	auth := bearerToken(t, 1, "Author")

	_, created := doJSON(t, app, http.MethodPost, "/api/tickers/AAPL/posts", auth,
		map[string]string{"title": "deep thread", "body": "discuss"})
	commentsURL := fmt.Sprintf("/api/posts/%d/comments", int(created["id"].(float64)))

	parentID := 0
	for depth := 0; depth <= models.MaxCommentDepth; depth++ {
		body := map[string]interface{}{"body": fmt.Sprintf("depth %d", depth)}
		if parentID != 0 {
			body["parent_comment_id"] = parentID
		}
		resp, comment := doJSON(t, app, http.MethodPost, commentsURL, auth, body)
		require.Equal(t, http.StatusCreated, resp.StatusCode, "depth %d should be accepted", depth)
		assert.EqualValues(t, depth, comment["depth"])
		parentID = int(comment["id"].(float64))
	}

	// parentID now sits at the ceiling; one more level is rejected.
	resp, errBody := doJSON(t, app, http.MethodPost, commentsURL, auth,
		map[string]interface{}{"body": "too deep", "parent_comment_id": parentID})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, models.CodeMaxDepthExceeded, errBody["code"])

	// The rejected comment left no row behind: the thread and the post's
	// counter still hold exactly the accepted chain.
	_, tree := doJSONList(t, app, http.MethodGet, commentsURL, auth)
	assert.Equal(t, models.MaxCommentDepth+1, countCommentNodes(tree))

	postURL := fmt.Sprintf("/api/posts/%d", int(created["id"].(float64)))
	_, post := doJSON(t, app, http.MethodGet, postURL, auth, nil)
	assert.EqualValues(t, models.MaxCommentDepth+1, post["comment_count"])
}

// countCommentNodes counts every node of a decoded reply tree.
func countCommentNodes(nodes []interface{}) int {
	total := 0
	for _, raw := range nodes {
		node, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		total++
		if replies, ok := node["replies"].([]interface{}); ok {
			total += countCommentNodes(replies)
		}
	}
	return total
}

func TestCommentOnMissingPost(t *testing.T) {
	t.Parallel()
	app, _ := newTestApp(t)
	auth := bearerToken(t, 1, "Author")

	resp, body := doJSON(t, app, http.MethodPost, "/api/posts/999/comments", auth,
		map[string]interface{}{"body": "into the void"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, models.CodeNotFound, body["code"])
}

func TestCommentParentFromAnotherPost(t *testing.T) {
	t.Parallel()
	app, _ := newTestApp(t)
	auth := bearerToken(t, 1, "Author")

	_, postA := doJSON(t, app, http.MethodPost, "/api/tickers/AAPL/posts", auth,
		map[string]string{"title": "a", "body": "a"})
	_, postB := doJSON(t, app, http.MethodPost, "/api/tickers/AAPL/posts", auth,
		map[string]string{"title": "b", "body": "b"})

	_, c1 := doJSON(t, app, http.MethodPost,
		fmt.Sprintf("/api/posts/%d/comments", int(postA["id"].(float64))), auth,
		map[string]interface{}{"body": "on post A"})

	resp, body := doJSON(t, app, http.MethodPost,
		fmt.Sprintf("/api/posts/%d/comments", int(postB["id"].(float64))), auth,
		map[string]interface{}{"body": "cross-thread", "parent_comment_id": int(c1["id"].(float64))})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, models.CodeNotFound, body["code"])
}

func TestDeleteCommentLeavesPlaceholder(t *testing.T) {
	t.Parallel()
	app, _ := newTestApp(t)
	auth := bearerToken(t, 1, "Author")
	replier := bearerToken(t, 2, "Replier")

	_, created := doJSON(t, app, http.MethodPost, "/api/tickers/AAPL/posts", auth,
		map[string]string{"title": "thread", "body": "discuss"})
	postID := int(created["id"].(float64))
	commentsURL := fmt.Sprintf("/api/posts/%d/comments", postID)

	_, c1 := doJSON(t, app, http.MethodPost, commentsURL, auth,
		map[string]interface{}{"body": "parent"})
	c1ID := int(c1["id"].(float64))
	doJSON(t, app, http.MethodPost, commentsURL, replier,
		map[string]interface{}{"body": "child", "parent_comment_id": c1ID})

	// Non-author cannot delete.
	resp, _ := doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/comments/%d", c1ID), replier, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/comments/%d", c1ID), auth, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	// The placeholder keeps its position; the child survives underneath it.
	_, tree := doJSONList(t, app, http.MethodGet, commentsURL, "")
	require.Len(t, tree, 1)
	root := tree[0].(map[string]interface{})
	assert.Equal(t, true, root["is_deleted"])
	assert.Empty(t, root["body"])
	assert.Empty(t, root["author_display"])
	replies := root["replies"].([]interface{})
	require.Len(t, replies, 1)
	assert.Equal(t, "child", replies[0].(map[string]interface{})["body"])

	// Live count only.
	_, post := doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/posts/%d", postID), "", nil)
	assert.EqualValues(t, 1, post["comment_count"])
}

func TestUpdateCommentAuthorOnly(t *testing.T) {
	t.Parallel()
	app, _ := newTestApp(t)
	auth := bearerToken(t, 1, "Author")
	other := bearerToken(t, 2, "Other")

	_, created := doJSON(t, app, http.MethodPost, "/api/tickers/AAPL/posts", auth,
		map[string]string{"title": "thread", "body": "discuss"})
	commentsURL := fmt.Sprintf("/api/posts/%d/comments", int(created["id"].(float64)))

	_, c1 := doJSON(t, app, http.MethodPost, commentsURL, auth,
		map[string]interface{}{"body": "original"})
	url := fmt.Sprintf("/api/comments/%d", int(c1["id"].(float64)))

	resp, _ := doJSON(t, app, http.MethodPut, url, other, map[string]string{"body": "hijacked"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, updated := doJSON(t, app, http.MethodPut, url, auth, map[string]string{"body": "edited"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "edited", updated["body"])
}
