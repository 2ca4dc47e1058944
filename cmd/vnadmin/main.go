// 程序入口：vnadmin 将行政区划新旧对照表转换为 JSON 映射与分层 API 数据，并可选发布到 PostgreSQL/Redis
package main

func main() {
	Execute()
}
