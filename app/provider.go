package app

import (
	"net/http"

	"github.com/km-arc/go-container/framework/config"
	"github.com/km-arc/go-container/framework/container"
	gohttp "github.com/km-arc/go-container/framework/http"
	"github.com/km-arc/go-container/framework/routing"
)

// StorageDriversTag groups every storage driver.
const StorageDriversTag = "storage.drivers"

// AppServiceProvider registers the demo's types, bindings and routes.
//
//	application.Register(&app.AppServiceProvider{})
type AppServiceProvider struct {
	container.BaseProvider
}

func (p *AppServiceProvider) Register(c *container.Container) error {
	types := c.Types()
	for _, reg := range []struct {
		name string
		ctor any
		opts []container.TypeOption
	}{
		{"S3", NewS3, []container.TypeOption{
			container.Params("bucket", "region"),
			container.Default("region", "us-east-1"),
		}},
		{"Local", NewLocal, []container.TypeOption{container.Params("root")}},
		{"PhotoController", NewPhotoController, nil},
		{"AvatarController", NewAvatarController, nil},
	} {
		if err := types.Register(reg.name, reg.ctor, reg.opts...); err != nil {
			return err
		}
	}
	if err := types.Interface("Storage", (*Storage)(nil)); err != nil {
		return err
	}

	// Laravel: $this->app->bind(Storage::class, S3::class)
	if err := c.Bind("Storage", "S3"); err != nil {
		return err
	}

	// The bucket is read from the environment each time an S3 driver is built.
	c.When("S3").Needs("$bucket").Give(func(*container.Container) (any, error) {
		return config.Get("AWS_BUCKET", "photos"), nil
	})
	c.When("Local").Needs("$root").Give(func(*container.Container) (any, error) {
		return config.Get("STORAGE_ROOT", "./storage"), nil
	})

	// Avatars always live on local disk.
	c.When("AvatarController").Needs("Storage").Give("Local")

	c.Tag([]string{"S3", "Local"}, StorageDriversTag)
	return nil
}

func (p *AppServiceProvider) Boot(c *container.Container) error {
	router, err := container.Resolve[*routing.Router](c, "router")
	if err != nil {
		return err
	}

	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		gohttp.NewResponse(w).Success(map[string]any{"message": "Welcome to Go-Container!"})
	})
	local, err := container.Resolve[*Local](c, "Local")
	if err != nil {
		return err
	}

	router.ResourceFrom("/photos", "PhotoController")
	router.Static("/files", local.Root)
	router.Get("/avatars/{user}", routing.Action(router, "AvatarController", (*AvatarController).Show))
	router.Get("/drivers", func(w http.ResponseWriter, r *http.Request) {
		res := gohttp.NewResponse(w)
		drivers, err := c.Tagged(StorageDriversTag)
		if err != nil {
			res.ResolutionError(err, false)
			return
		}
		names := make([]string, 0, len(drivers))
		for _, d := range drivers {
			names = append(names, d.(Storage).Driver())
		}
		res.Success(names)
	})
	return nil
}
