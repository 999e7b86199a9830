package main

import (
	"bytes"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/CodedInternet/gonao/comms"
)

func testDb(t *testing.T) func() {
	dir, err := ioutil.TempDir("", "gonao-auth")
	if err != nil {
		t.Fatal(err)
	}
	db, err := openDb(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	ENV.DB = db
	return func() {
		db.Close()
		os.RemoveAll(dir)
	}
}

func login(email, password string) *httptest.ResponseRecorder {
	body, _ := json.Marshal(&LoginPayload{Email: email, Password: password})
	req := httptest.NewRequest("POST", "/api/login", bytes.NewBuffer(body))
	req.Header.Add("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	http.HandlerFunc(Login).ServeHTTP(rr, req)
	return rr
}

func TestOperator(t *testing.T) {
	Convey("Methods work as expected", t, func() {
		op := new(Operator)
		Convey("Setting and verify password works correctly with hashes", func() {
			So(op.SetPassword([]byte("hello123")), ShouldBeNil)
			So(op.Password, ShouldStartWith, "$")

			So(op.VerifyPassword([]byte("hello123")), ShouldBeNil)
			So(op.VerifyPassword([]byte("hello12")), ShouldNotBeNil)
		})

		Convey("Invalid hash returns the correct error code", func() {
			op.Password = "I DON'T WORK"
			So(op.VerifyPassword([]byte("hello123")).Error(), ShouldContainSubstring, "hashedSecret too short")
		})
	})
}

func TestTokens(t *testing.T) {
	Convey("signed tokens parse back to their claims", t, func() {
		ts, err := signToken("hello test")
		So(err, ShouldBeNil)

		claims, err := parseToken(ts)
		So(err, ShouldBeNil)
		So(claims.Subject, ShouldEqual, "hello test")
		So(claims.Issuer, ShouldEqual, ENV.JWT_ISSUER)
	})

	Convey("tokens signed with another secret are invalid", t, func() {
		claims := jwt.StandardClaims{Subject: "intruder", ExpiresAt: time.Now().Add(time.Hour).Unix()}
		ts, _ := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("not the secret"))

		_, err := parseToken(ts)
		So(err, ShouldEqual, ErrTokenInvalid)
	})

	Convey("expired tokens say so", t, func() {
		lifespan := JWT_LIFESPAN
		JWT_LIFESPAN = -time.Minute
		ts, _ := signToken("late")
		JWT_LIFESPAN = lifespan

		_, err := parseToken(ts)
		So(err, ShouldEqual, ErrTokenExpired)
	})
}

func TestLogin(t *testing.T) {
	defer testDb(t)()
	if err := addOperator(ENV.DB, "login@test.case", "testing123"); err != nil {
		t.Fatal(err)
	}

	Convey("Valid request works as expected", t, func() {
		rr := login("login@test.case", "testing123")
		So(rr.Code, ShouldEqual, http.StatusOK)
		So(rr.Body.String(), ShouldContainSubstring, `"token":`)
	})

	Convey("Invalid credentials return error", t, func() {
		Convey("Incorrect username provides 404", func() {
			So(login("login-no@test.case", "testing123").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("Incorrect password provides 403", func() {
			So(login("login@test.case", "testing12").Code, ShouldEqual, http.StatusForbidden)
		})

		Convey("Missing email provides 400", func() {
			So(login("", "testing123").Code, ShouldEqual, http.StatusBadRequest)
		})
	})

	Convey("Duplicate operators are refused", t, func() {
		So(addOperator(ENV.DB, "login@test.case", "other"), ShouldNotBeNil)
	})
}

func TestMonitorRoutes(t *testing.T) {
	defer testDb(t)()

	conductor := comms.NewConductor(nil, nil)
	conductor.Publish(comms.StatePayload{Cycle: 9})
	router := newRouter(conductor)

	get := func(path string, header http.Header) *httptest.ResponseRecorder {
		req := httptest.NewRequest("GET", path, nil)
		for k, v := range header {
			req.Header[k] = v
		}
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		return rr
	}

	Convey("The monitor needs a token", t, func() {
		So(get("/api/state", nil).Code, ShouldEqual, http.StatusUnauthorized)
		So(get("/ws/state", nil).Code, ShouldEqual, http.StatusUnauthorized)

		bad := http.Header{"Authorization": {"Bearer nonsense"}}
		So(get("/api/state", bad).Code, ShouldEqual, http.StatusUnauthorized)
	})

	Convey("A valid token reads the state", t, func() {
		ts, _ := signToken("monitor@test.case")

		rr := get("/api/state", http.Header{"Authorization": {"Bearer " + ts}})
		So(rr.Code, ShouldEqual, http.StatusOK)
		So(rr.Body.String(), ShouldContainSubstring, `"cycle":9`)

		So(get("/api/state?jwt="+ts, nil).Code, ShouldEqual, http.StatusOK)

		Convey("and refreshes", func() {
			rr := get("/api/refresh_token", http.Header{"Authorization": {"Bearer " + ts}})
			So(rr.Code, ShouldEqual, http.StatusOK)
			So(rr.Body.String(), ShouldContainSubstring, `"token":`)
		})
	})

	Convey("Expired tokens are refused", t, func() {
		lifespan := JWT_LIFESPAN
		JWT_LIFESPAN = -time.Minute
		ts, _ := signToken("monitor@test.case")
		JWT_LIFESPAN = lifespan

		rr := get("/api/state", http.Header{"Authorization": {"Bearer " + ts}})
		So(rr.Code, ShouldEqual, http.StatusUnauthorized)
		So(rr.Body.String(), ShouldContainSubstring, "expired")
	})
}
