// Solution HTTP handlers.
//
//   - POST    /solutions               (upsert)
//   - GET     /solutions?problemId=    (list newest first)
//   - OPTIONS /solutions               (pre-flight)
//
// The group runs under PolicyBare with fixed CORS headers.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-crud-backend/internal/http/middleware"
	"github.com/tbourn/go-crud-backend/internal/services"
)

// SolutionRequest documents the POST /solutions payload.
type SolutionRequest struct {
	// ProblemID may be a string or a number.
	ProblemID    string `json:"problemId" example:"42"`
	Username     string `json:"username" example:"alice"`
	SolutionLink string `json:"solutionLink" example:"https://github.com/alice/p42"`
}

// SubmitSolution godoc
// @ID          submitSolution
// @Summary     Submit a solution
// @Description Creates or replaces the submission of a user for a problem. The first submission's createdAt is preserved.
// @Tags        Solutions
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.SolutionRequest  true  "Submission"
//
// @Success     200  {object}  domain.Solution
// @Failure     400  {object}  handlers.BareErrorResponse  "Malformed body or missing field"
// @Failure     500  {object}  handlers.BareErrorResponse  "Store failure"
// @Router      /solutions [post]
func (h *Handlers) SubmitSolution(c *gin.Context) {
	in, err := services.ValidateSolution(middleware.BodyFrom(c))
	if err != nil {
		Abort(c, err)
		return
	}
	sol, err := h.solutions.Submit(c.Request.Context(), in)
	if err != nil {
		Abort(c, err)
		return
	}
	ok(c, http.StatusOK, sol)
}

// ListSolutions godoc
// @ID          listSolutions
// @Summary     List solutions for a problem
// @Description Returns every submission for problemId, newest first.
// @Tags        Solutions
// @Produce     json
//
// @Param       problemId  query  string  true  "Problem id"  example(42)
//
// @Success     200  {array}   domain.SolutionSummary
// @Failure     400  {object}  handlers.BareErrorResponse  "problemId required"
// @Failure     500  {object}  handlers.BareErrorResponse  "Store failure"
// @Router      /solutions [get]
func (h *Handlers) ListSolutions(c *gin.Context) {
	pid, err := services.ValidateProblemQuery(c.Query("problemId"))
	if err != nil {
		Abort(c, err)
		return
	}
	list, err := h.solutions.ListByProblem(c.Request.Context(), pid)
	if err != nil {
		Abort(c, err)
		return
	}
	ok(c, http.StatusOK, list)
}

// SolutionsPreflight godoc
// @ID          solutionsPreflight
// @Summary     CORS pre-flight
// @Tags        Solutions
// @Success     200  {string}  string  "empty body"
// @Router      /solutions [options]
func (h *Handlers) SolutionsPreflight(c *gin.Context) {
	c.Status(http.StatusOK)
}
