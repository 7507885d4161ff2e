package echoutil

import (
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// Proxy forwards the request held by c to url and copies the response back,
// headers and status included.
func Proxy(cp *echo.Context, url string) error {
	c := *cp

	req, err := http.NewRequestWithContext(
		c.Request().Context(), c.Request().Method, url, c.Request().Body,
	)
	if err != nil {
		c.String(http.StatusInternalServerError, err.Error())
		return err
	}
	CopyHeader(&req.Header, &c.Request().Header, "host")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		c.String(http.StatusBadGateway, err.Error())
		return err
	}
	defer resp.Body.Close()

	dstHeader := c.Response().Header()
	CopyHeader(&dstHeader, &resp.Header)
	c.Response().WriteHeader(resp.StatusCode)
	_, err = io.Copy(c.Response().Writer, resp.Body)
	return err
}

func CopyHeader(dest *http.Header, src *http.Header, except ...string) {
	exc := map[string]interface{}{}
	for _, x := range except {
		exc[strings.ToLower(x)] = nil
	}

	for k, vs := range *src {
		if _, ok := exc[strings.ToLower(k)]; ok {
			continue
		}
		for _, v := range vs {
			dest.Add(k, v)
		}
	}
}
