package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/pbaille/diary/internal/diary"
	"github.com/pbaille/diary/internal/domain"
	"github.com/pbaille/diary/internal/register"
)

// Server handles HTTP requests for the diary API
type Server struct {
	svc    *diary.Service
	log    zerolog.Logger
	engine *gin.Engine
}

// New creates a new API server. When gatherer is non-nil its metrics are
// served on /metrics.
func New(svc *diary.Service, log zerolog.Logger, gatherer prometheus.Gatherer) *Server {
	s := &Server{svc: svc, log: log}

	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Content-Type"},
		MaxAge:          12 * time.Hour,
	}))

	r.GET("/health", s.health)
	if gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	// Authors
	r.GET("/authors", s.listAuthors)
	r.POST("/authors", s.addAuthor)
	r.GET("/authors/search", s.findAuthors)
	r.GET("/authors/:author", s.getAuthor)
	r.PUT("/authors/:author", s.renameAuthor)
	r.DELETE("/authors/:author", s.removeAuthor)

	// Entries
	r.GET("/authors/:author/entries", s.entriesByAuthor)
	r.POST("/authors/:author/entries", s.createEntry)
	r.GET("/authors/:author/entries/:title", s.getEntry)
	r.PUT("/authors/:author/entries/:title", s.setEntryTitle)
	r.DELETE("/authors/:author/entries/:title", s.removeEntry)

	// Pages
	r.POST("/authors/:author/entries/:title/pages", s.addPage)
	r.PUT("/authors/:author/entries/:title/pages/:page", s.updatePage)
	r.DELETE("/authors/:author/entries/:title/pages/:page", s.removePage)

	// Search
	r.GET("/search", s.searchWord)
	r.GET("/entries", s.entriesBetween)
	r.GET("/entries/created/:date", s.entriesOn(diary.KindCreatedDate))
	r.GET("/entries/changed/:date", s.entriesOn(diary.KindChangedDate))

	s.engine = r
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run starts the HTTP server
func (s *Server) Run(addr string) error {
	s.log.Info().Str("addr", addr).Msg("starting server")
	return s.engine.Run(addr)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		s.log.Info().
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", c.Writer.Status()).
			Dur("latency_ms", time.Since(start)).
			Str("ip", c.ClientIP()).
			Msg("HTTP Request")
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) listAuthors(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"authors": s.svc.Authors()})
}

func (s *Server) addAuthor(c *gin.Context) {
	var req domain.Name
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	author, err := s.svc.AddAuthor(req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, author)
}

func (s *Server) findAuthors(c *gin.Context) {
	prefix := c.Query("prefix") == "true"
	q := diary.AuthorQuery{
		First:       c.Query("first_name"),
		Last:        c.Query("last_name"),
		Nickname:    c.Query("nickname"),
		FirstPrefix: prefix,
		LastPrefix:  prefix,
		NickPrefix:  prefix,
	}
	authors, err := s.svc.FindAuthors(q)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"authors": authors})
}

func (s *Server) getAuthor(c *gin.Context) {
	author, err := s.svc.Author(c.Param("author"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, author)
}

func (s *Server) renameAuthor(c *gin.Context) {
	var req domain.Name
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	author, err := s.svc.RenameAuthor(c.Param("author"), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, author)
}

func (s *Server) removeAuthor(c *gin.Context) {
	author, err := s.svc.RemoveAuthor(c.Param("author"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, author)
}

func (s *Server) entriesByAuthor(c *gin.Context) {
	s.search(c, diary.Query{Kind: diary.KindAuthor, Author: c.Param("author")})
}

// TitleRequest is the request body for creating or retitling an entry.
// MaxWordsPerPage is read on creation only; 0 selects the configured limit.
type TitleRequest struct {
	Title           string `json:"title"`
	MaxWordsPerPage int    `json:"max_words_per_page,omitempty"`
}

func (s *Server) createEntry(c *gin.Context) {
	var req TitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	entry, err := s.svc.CreateEntryWithLimit(diary.EntryRef{Author: c.Param("author"), Title: req.Title}, req.MaxWordsPerPage)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (s *Server) getEntry(c *gin.Context) {
	entry, err := s.svc.Entry(entryRef(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (s *Server) setEntryTitle(c *gin.Context) {
	var req TitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	entry, err := s.svc.SetEntryTitle(entryRef(c), req.Title)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (s *Server) removeEntry(c *gin.Context) {
	entry, err := s.svc.RemoveEntry(entryRef(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// PageRequest is the request body for adding or updating a page. On update,
// nil fields are left unchanged.
type PageRequest struct {
	Title *string `json:"title"`
	Text  *string `json:"text"`
}

func (s *Server) addPage(c *gin.Context) {
	var req PageRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Title == nil || req.Text == nil {
		writeError(c, http.StatusBadRequest, "title and text are required")
		return
	}
	entry, err := s.svc.AddPage(entryRef(c), *req.Title, *req.Text)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (s *Server) updatePage(c *gin.Context) {
	n, ok := pageNumber(c)
	if !ok {
		return
	}
	var req PageRequest
	if err := c.ShouldBindJSON(&req); err != nil || (req.Title == nil && req.Text == nil) {
		writeError(c, http.StatusBadRequest, "title or text is required")
		return
	}

	entry, err := s.svc.UpdatePage(entryRef(c), n, req.Title, req.Text)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (s *Server) removePage(c *gin.Context) {
	n, ok := pageNumber(c)
	if !ok {
		return
	}
	entry, err := s.svc.RemovePage(entryRef(c), n)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (s *Server) searchWord(c *gin.Context) {
	word := c.Query("word")
	if word == "" {
		writeError(c, http.StatusBadRequest, "query parameter 'word' is required")
		return
	}
	limit := 0
	if l := c.Query("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 0 {
			writeError(c, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	s.search(c, diary.Query{Kind: diary.KindWord, Word: word, Limit: limit})
}

func (s *Server) entriesBetween(c *gin.Context) {
	from, err := register.ParseDate(c.Query("from"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	to, err := register.ParseDate(c.Query("to"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	s.search(c, diary.Query{Kind: diary.KindDateRange, Range: register.DateRange{Start: from, End: to}})
}

func (s *Server) entriesOn(kind diary.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		date, err := register.ParseDate(c.Param("date"))
		if err != nil {
			writeServiceError(c, err)
			return
		}
		s.search(c, diary.Query{Kind: kind, Date: date})
	}
}

func (s *Server) search(c *gin.Context, q diary.Query) {
	res, err := s.svc.Search(q)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"kind": res.Kind(), "result": res})
}

func entryRef(c *gin.Context) diary.EntryRef {
	return diary.EntryRef{Author: c.Param("author"), Title: c.Param("title")}
}

func pageNumber(c *gin.Context) (int, bool) {
	n, err := strconv.Atoi(c.Param("page"))
	if err != nil {
		writeError(c, http.StatusBadRequest, "page must be an integer")
		return 0, false
	}
	return n, true
}

func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrNameTaken):
		writeError(c, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrInvalidArgument):
		writeError(c, http.StatusBadRequest, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, err.Error())
	}
}

func writeError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}
