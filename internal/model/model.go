package model

import (
	"github.com/mx42/stargazer/cfg"
	"github.com/mx42/stargazer/pkg/db"
	"github.com/mx42/stargazer/pkg/log"
)

type Model struct {
	Config *cfg.Config `gorm:"-" json:"-"`
	Logger log.Logger  `gorm:"-" json:"-"`
	Mysql  *db.Mysql   `gorm:"-" json:"-"`
	ID     uint        `json:"id" gorm:"primaryKey"`
}
