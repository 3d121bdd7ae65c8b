package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jitsucom/snapshotview/snapshot"
)

//ActiveResponse is a dto for active table name response
type ActiveResponse struct {
	Dataset string `json:"dataset"`
	Active  string `json:"active"`
}

//DatasetsHandler serves active table names and statuses of the configured datasets
type DatasetsHandler struct {
	storage  snapshot.Storage
	datasets map[string]*snapshot.Dataset
}

//NewDatasetsHandler returns configured DatasetsHandler instance
func NewDatasetsHandler(storage snapshot.Storage, datasets []*snapshot.Dataset) *DatasetsHandler {
	byName := make(map[string]*snapshot.Dataset, len(datasets))
	for _, dataset := range datasets {
		byName[dataset.BaseTableName()] = dataset
	}

	return &DatasetsHandler{storage: storage, datasets: byName}
}

//ActiveHandler returns the table readers of the dataset must query
func (dh *DatasetsHandler) ActiveHandler(c *gin.Context) {
	dataset, ok := dh.dataset(c)
	if !ok {
		return
	}

	active := snapshot.NewSwitchPointer(dataset, dh.storage).Read(c.Request.Context())
	c.JSON(http.StatusOK, ActiveResponse{Dataset: dataset.BaseTableName(), Active: active})
}

//StatusHandler returns all version tables of the dataset
func (dh *DatasetsHandler) StatusHandler(c *gin.Context) {
	dataset, ok := dh.dataset(c)
	if !ok {
		return
	}

	status, err := snapshot.NewLifecycle(dataset, dh.storage).Status(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Error getting dataset status", err))
		return
	}

	c.JSON(http.StatusOK, status)
}

func (dh *DatasetsHandler) dataset(c *gin.Context) (*snapshot.Dataset, bool) {
	name := c.Param("dataset")
	dataset, ok := dh.datasets[name]
	if !ok {
		c.JSON(http.StatusNotFound, errorResponse("Unknown dataset "+name, nil))
		return nil, false
	}

	return dataset, true
}
