package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"staffhub/internal/core/cache"
	"staffhub/internal/domain"
	"staffhub/internal/service"
	"staffhub/internal/transport/http/middleware"
	resp "staffhub/internal/transport/http/response"
)

const pictureCacheTTL = 5 * time.Minute

type UserHandler struct {
	svc   *service.UserService
	cache *cache.Cache // 可为 nil（测试/未配置 redis 时直读）
}

func NewUserHandler(svc *service.UserService, cc *cache.Cache) *UserHandler {
	return &UserHandler{svc: svc, cache: cc}
}

// 日期入参收 2006-01-02 或 RFC3339
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

type createUserIn struct {
	Name        string   `json:"name" binding:"required,max=30"`
	Email       string   `json:"email" binding:"required,email"`
	DOB         string   `json:"dob" binding:"required"`
	DOJ         string   `json:"doj" binding:"required"`
	Type        string   `json:"type" binding:"omitempty,max=32"`
	Project     []string `json:"project" binding:"required,min=1"`
	Address     string   `json:"address" binding:"required"`
	PhoneNumber string   `json:"phoneNumber" binding:"required"`
}

func (h *UserHandler) Create(c *gin.Context) {
	var in createUserIn
	if err := c.ShouldBindJSON(&in); err != nil {
		resp.FromError(c, service.Validation(err.Error()))
		return
	}
	dob, err := parseDate(in.DOB)
	if err != nil {
		resp.FromError(c, service.Validation("dob must be a date (YYYY-MM-DD)"))
		return
	}
	doj, err := parseDate(in.DOJ)
	if err != nil {
		resp.FromError(c, service.Validation("doj must be a date (YYYY-MM-DD)"))
		return
	}
	admin, ok := middleware.AdminFrom(c)
	if !ok {
		resp.FromError(c, service.ErrUnauthenticated)
		return
	}

	u, oneTimePw, emailSent, err := h.svc.Create(c.Request.Context(), admin.ID, service.CreateUserInput{
		Name:        in.Name,
		Email:       in.Email,
		DOB:         dob,
		DOJ:         doj,
		Type:        in.Type,
		Project:     in.Project,
		Address:     in.Address,
		PhoneNumber: in.PhoneNumber,
	})
	if err != nil {
		resp.FromError(c, err)
		return
	}
	// 初始密码只在这一个响应里出现
	c.JSON(http.StatusCreated, resp.OK(gin.H{
		"user":        userView(u),
		"credentials": gin.H{"password": oneTimePw},
		"emailSent":   emailSent,
	}))
}

func (h *UserHandler) List(c *gin.Context) {
	includeDeleted := c.Query("includeDeleted") == "true"
	us, err := h.svc.List(c.Request.Context(), includeDeleted)
	if err != nil {
		resp.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp.OK(gin.H{"users": userViews(us), "count": len(us)}))
}

func (h *UserHandler) ListDeleted(c *gin.Context) {
	us, err := h.svc.ListDeleted(c.Request.Context())
	if err != nil {
		resp.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp.OK(gin.H{"users": userViews(us), "count": len(us)}))
}

type searchIn struct {
	Search         string `form:"search"`
	Type           string `form:"type"`
	IncludeDeleted bool   `form:"includeDeleted"`
	SortBy         string `form:"sortBy"`
	SortOrder      string `form:"sortOrder"` // asc | desc
}

func (h *UserHandler) Search(c *gin.Context) {
	var in searchIn
	if err := c.ShouldBindQuery(&in); err != nil {
		resp.FromError(c, service.Validation(err.Error()))
		return
	}
	us, err := h.svc.Search(c.Request.Context(), domain.UserQuery{
		Term:           in.Search,
		Type:           in.Type,
		IncludeDeleted: in.IncludeDeleted,
		SortBy:         in.SortBy,
		SortDesc:       in.SortOrder == "desc" || (in.SortOrder == "" && in.SortBy == ""),
	})
	if err != nil {
		resp.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp.OK(gin.H{"users": userViews(us), "count": len(us)}))
}

func (h *UserHandler) Get(c *gin.Context) {
	u, err := h.svc.GetByUserID(c.Request.Context(), c.Param("id"))
	if err != nil {
		resp.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp.OK(userView(u)))
}

type updateUserIn struct {
	Name        *string   `json:"name"`
	Email       *string   `json:"email"`
	DOB         *string   `json:"dob"`
	DOJ         *string   `json:"doj"`
	Type        *string   `json:"type"`
	Project     *[]string `json:"project"`
	Address     *string   `json:"address"`
	PhoneNumber *string   `json:"phoneNumber"`
}

func (h *UserHandler) Update(c *gin.Context) {
	var in updateUserIn
	if err := c.ShouldBindJSON(&in); err != nil {
		resp.FromError(c, service.Validation(err.Error()))
		return
	}
	patch := domain.UserPatch{
		Name:        in.Name,
		Email:       in.Email,
		Type:        in.Type,
		Project:     in.Project,
		Address:     in.Address,
		PhoneNumber: in.PhoneNumber,
	}
	if in.DOB != nil {
		t, err := parseDate(*in.DOB)
		if err != nil {
			resp.FromError(c, service.Validation("dob must be a date (YYYY-MM-DD)"))
			return
		}
		patch.DOB = &t
	}
	if in.DOJ != nil {
		t, err := parseDate(*in.DOJ)
		if err != nil {
			resp.FromError(c, service.Validation("doj must be a date (YYYY-MM-DD)"))
			return
		}
		patch.DOJ = &t
	}

	u, err := h.svc.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		resp.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp.OK(userView(u)))
}

func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		resp.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp.OK(gin.H{"userId": c.Param("id")}))
}

func (h *UserHandler) Restore(c *gin.Context) {
	if err := h.svc.Restore(c.Request.Context(), c.Param("id")); err != nil {
		resp.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp.OK(gin.H{"userId": c.Param("id")}))
}

func (h *UserHandler) UploadProfilePicture(c *gin.Context) {
	fh, err := c.FormFile("profilePicture")
	if err != nil {
		resp.FromError(c, service.Validation("profilePicture file is required"))
		return
	}
	f, err := fh.Open()
	if err != nil {
		resp.FromError(c, service.Validation("cannot read uploaded file"))
		return
	}
	defer f.Close()

	userID := c.Param("id")
	url, err := h.svc.UploadProfilePicture(c.Request.Context(), userID,
		fh.Header.Get("Content-Type"), fh.Size, f)
	if err != nil {
		resp.FromError(c, err)
		return
	}
	if h.cache != nil {
		h.cache.Invalidate(c.Request.Context(), pictureCacheKey(userID))
	}
	c.JSON(http.StatusOK, resp.OK(gin.H{"profilePicture": url}))
}

// GetProfilePicture 公开端点，302 跳到对象存储
func (h *UserHandler) GetProfilePicture(c *gin.Context) {
	ctx := c.Request.Context()
	userID := c.Param("id")

	var url string
	var err error
	if h.cache != nil {
		var cached *string
		cached, err = cache.GetOrLoadJSON(h.cache, ctx, pictureCacheKey(userID), pictureCacheTTL,
			func(ctx context.Context) (*string, error) {
				u, lerr := h.svc.ProfilePicture(ctx, userID)
				if lerr != nil {
					return nil, lerr
				}
				return &u, nil
			})
		if cached != nil {
			url = *cached
		}
	} else {
		url, err = h.svc.ProfilePicture(ctx, userID)
	}
	if err != nil {
		resp.FromError(c, err)
		return
	}
	c.Redirect(http.StatusFound, url)
}

func pictureCacheKey(userID string) string { return "user:picture:" + userID }
