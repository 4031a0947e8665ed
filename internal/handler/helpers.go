package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gabeVald/Personal-Task-Manager/internal/middleware"
	"github.com/gabeVald/Personal-Task-Manager/internal/models"
	"github.com/gabeVald/Personal-Task-Manager/internal/util"

	"github.com/gin-gonic/gin"
)

// currentUser pulls the authenticated user out of the gin context. It writes
// the auth error itself; callers just return on !ok.
func currentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(middleware.CurrentUserKey)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
		return nil, false
	}
	user, ok := v.(*models.User)
	if !ok || user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
		return nil, false
	}
	return user, true
}

// assertOwner is the single ownership check used by every handler: the
// requester must be the entity's owner.
func assertOwner(owner, requester string) error {
	if owner != requester {
		return fmt.Errorf("entity belongs to another user")
	}
	return nil
}

// parseID parses a numeric path parameter.
func parseID(c *gin.Context, name string) (uint, bool) {
	idStr := c.Param(name)
	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid id format")
		return 0, false
	}
	return uint(id), true
}

// parsePagination reads skip/limit query parameters with sane bounds.
func parsePagination(c *gin.Context, defaultLimit int) (skip, limit int) {
	skip, _ = strconv.Atoi(c.DefaultQuery("skip", "0"))
	if skip < 0 {
		skip = 0
	}
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if limit <= 0 || limit > 200 {
		limit = defaultLimit
	}
	return skip, limit
}

// parseDateRange reads optional start_date/end_date query parameters in
// YYYY-MM-DD form. end is advanced to the following midnight and meant as an
// exclusive bound, so the named end date is included in full.
func parseDateRange(c *gin.Context) (start, end time.Time, hasStart, hasEnd bool, err error) {
	if s := c.Query("start_date"); s != "" {
		start, err = time.Parse("2006-01-02", s)
		if err != nil {
			return start, end, false, false, fmt.Errorf("invalid start_date, expected YYYY-MM-DD")
		}
		hasStart = true
	}
	if s := c.Query("end_date"); s != "" {
		end, err = time.Parse("2006-01-02", s)
		if err != nil {
			return start, end, false, false, fmt.Errorf("invalid end_date, expected YYYY-MM-DD")
		}
		end = end.Add(24 * time.Hour)
		hasEnd = true
	}
	return start, end, hasStart, hasEnd, nil
}
