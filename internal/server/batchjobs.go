package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// UploadBatch accepts a CSV file and queues it for asynchronous
// prediction. Returns 202 with the job descriptor; progress is polled
// via /batch/jobs/:id.
func (s *Server) UploadBatch(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	defer file.Close()

	job, err := s.batch.Submit(c.Request.Context(), fileHeader.Filename, file)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, job)
}

func (s *Server) BatchJobStatus(c *gin.Context) {
	job, err := s.batch.Status(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (s *Server) BatchJobResults(c *gin.Context) {
	results, err := s.batch.Results(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

func (s *Server) ListBatchJobs(c *gin.Context) {
	jobs := s.batch.List()
	c.JSON(http.StatusOK, gin.H{
		"jobs":  jobs,
		"count": len(jobs),
	})
}
