package app

import (
	"net/http"

	"github.com/rs/zerolog"

	foundation "github.com/km-arc/go-container/framework/app"
)

// PhotoController serves /photos. Its Storage is whatever "Storage" is
// bound to globally.
type PhotoController struct {
	foundation.Controller
	Storage Storage
	log     zerolog.Logger
}

// NewPhotoController is registered as the "PhotoController" constructor.
func NewPhotoController(storage Storage, log zerolog.Logger) *PhotoController {
	return &PhotoController{Storage: storage, log: log}
}

func (c *PhotoController) Index(w http.ResponseWriter, r *http.Request) {
	c.Response(w).Success(map[string]any{"driver": c.Storage.Driver()})
}

func (c *PhotoController) Store(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if err := c.Request(r).Bind(&body); err != nil {
		c.Response(w).Error(http.StatusBadRequest, err.Error())
		return
	}
	url, err := c.Storage.URL(body.Name)
	if err != nil {
		c.Response(w).Error(http.StatusUnprocessableEntity, err.Error())
		return
	}
	c.log.Info().Str("driver", c.Storage.Driver()).Str("url", url).Msg("photo stored")
	c.Response(w).Created(map[string]any{"name": body.Name, "url": url})
}

func (c *PhotoController) Show(w http.ResponseWriter, r *http.Request) {
	id := c.Request(r).RouteParam("id")
	url, err := c.Storage.URL(id)
	if err != nil {
		c.Response(w).NotFound()
		return
	}
	c.Response(w).Success(map[string]any{"id": id, "url": url})
}

func (c *PhotoController) Update(w http.ResponseWriter, r *http.Request) {
	c.Show(w, r)
}

func (c *PhotoController) Destroy(w http.ResponseWriter, r *http.Request) {
	c.Response(w).NoContent()
}

// AvatarController serves /avatars. A contextual binding gives it the
// Local driver regardless of the global "Storage" binding.
type AvatarController struct {
	foundation.Controller
	Storage Storage
}

// NewAvatarController is registered as the "AvatarController" constructor.
func NewAvatarController(storage Storage) *AvatarController {
	return &AvatarController{Storage: storage}
}

func (c *AvatarController) Show(w http.ResponseWriter, r *http.Request) {
	user := c.Request(r).RouteParam("user")
	url, err := c.Storage.URL(user + ".png")
	if err != nil {
		c.Response(w).NotFound()
		return
	}
	c.Response(w).Success(map[string]any{"user": user, "driver": c.Storage.Driver(), "url": url})
}
