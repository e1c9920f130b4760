package apperr

import (
	"errors"
	"log"

	"github.com/gin-gonic/gin"
)

// Respond writes err as the JSON error body with the mapped status. Field
// errors ride along for validation failures. Transient causes are logged and
// never leak past the generic message.
func Respond(c *gin.Context, err error) {
	var e *Error
	if errors.As(err, &e) {
		if e.Kind == KindTransient && e.Err != nil {
			log.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, e.Err)
		}
		if len(e.Fields) > 0 {
			c.JSON(Status(err), gin.H{"error": e.Message, "fields": e.Fields})
			return
		}
		c.JSON(Status(err), gin.H{"error": e.Message})
		return
	}

	log.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	c.JSON(Status(err), gin.H{"error": "Something went wrong. Please try again later"})
}
